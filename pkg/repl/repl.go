package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/duynguyendang/maya/pkg/export"
	"github.com/duynguyendang/maya/pkg/extract"
	"github.com/duynguyendang/maya/pkg/github"
	"github.com/duynguyendang/maya/pkg/service/ai"
	"github.com/duynguyendang/maya/pkg/syntax"
)

// Speaker turns reply text into audio.
type Speaker interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Copier puts text on the clipboard.
type Copier interface {
	Copy(text string) error
}

// Deps are the collaborators the REPL drives. Only Chat and Session are required.
type Deps struct {
	Chat      *ai.ChatService
	Session   *ai.Session
	GitHub    *github.Client
	Speaker   Speaker
	Clipboard Copier
	Exporter  *export.Exporter
	Checker   *syntax.Checker
	Logger    zerolog.Logger
}

// REPL is an interactive chat with Maya on a terminal.
type REPL struct {
	cfg   Config
	deps  Deps
	out   io.Writer
	state *SessionContext
}

func New(cfg Config, deps Deps, out io.Writer) *REPL {
	if deps.Exporter == nil {
		deps.Exporter = export.NewExporter(deps.Logger)
	}
	return &REPL{cfg: cfg, deps: deps, out: out, state: NewSessionContext()}
}

// Run reads lines from in until EOF, /exit or ctx is done.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	r.printf("\n--- Maya ---\n")
	r.printGreeting()
	r.printf("Type /help for commands, /exit to leave.\n")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.printf("%s", r.cfg.Prompt)
		if !scanner.Scan() {
			break
		}
		if quit := r.Handle(ctx, scanner.Text()); quit {
			break
		}
	}
	r.printf("👋 ¡Hasta luego!\n")
	return scanner.Err()
}

// Handle processes one line of input and reports whether the user asked to quit.
func (r *REPL) Handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		r.send(ctx, line)
		return false
	}

	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	cmd, ok := lookup(name)
	if !ok {
		if s := Suggest(name, commandNames()); len(s) > 0 {
			r.printf("Unknown command %s. Did you mean %s?\n", name, s[0])
		} else {
			r.printf("Unknown command %s. Type /help for the list.\n", name)
		}
		return false
	}
	if cmd.run == nil {
		return true
	}
	if err := cmd.run(r, ctx, fields[1:]); err != nil {
		r.printf("❌ %v\n", err)
	}
	return false
}

func (r *REPL) send(ctx context.Context, message string) {
	r.printf("💭 ...\n")
	reply, err := r.deps.Chat.Send(ctx, r.deps.Session, message, r.state.Pending)
	if err != nil {
		if errors.Is(err, ai.ErrBusy) {
			r.printf("⏳ still waiting on the previous message\n")
			return
		}
		r.deps.Logger.Warn().Err(err).Msg("chat failed")
		r.printf("❌ %v\n", err)
		return
	}
	r.state.UpdateContext(reply.Text, reply.Files)

	r.printf("\nmaya> %s\n\n", reply.Text)
	if len(reply.Files) > 0 && r.cfg.ShowCards {
		r.printf("💾 %d file(s) detected. /files to list, /save or /zip to export.\n", len(reply.Files))
		r.printCards(reply.Files)
	}
}

func (r *REPL) printCards(files []extract.ExtractedFile) {
	cards := extract.Cards(files)
	if r.deps.Checker != nil {
		r.deps.Checker.Annotate(files, cards)
	}
	for i, c := range cards {
		r.printf("%d. %s %s (%s, %d lines, %d chars)", i+1, c.Icon, c.Name, c.Language, c.LineCount, c.CharCount)
		if !c.ValidName {
			r.printf(" ⚠ unsafe name")
		}
		if c.SyntaxNote != "" {
			r.printf(" %s", c.SyntaxNote)
		}
		r.printf("\n")
	}
}

func (r *REPL) printGreeting() {
	if g := r.deps.Session.Greeting(); g != "" {
		r.printf("maya> %s\n", g)
	}
}

func (r *REPL) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}
