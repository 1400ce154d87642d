package repl

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/duynguyendang/maya/internal/metrics"
	"github.com/duynguyendang/maya/pkg/attach"
	"github.com/duynguyendang/maya/pkg/export"
	"github.com/duynguyendang/maya/pkg/extract"
	"github.com/duynguyendang/maya/pkg/github"
	"github.com/duynguyendang/maya/pkg/service/ai"
)

type command struct {
	name  string
	usage string
	help  string
	run   func(r *REPL, ctx context.Context, args []string) error
}

var commandTable []command

func init() {
	commandTable = []command{
		{"/help", "/help", "show this list", (*REPL).cmdHelp},
		{"/files", "/files", "list files from the last reply", (*REPL).cmdFiles},
		{"/show", "/show <n>", "print file n", (*REPL).cmdShow},
		{"/copy", "/copy <n>", "copy file n to the clipboard", (*REPL).cmdCopy},
		{"/save", "/save <dir> [--sanitize]", "write the files to a directory", (*REPL).cmdSave},
		{"/zip", "/zip <path> [--sanitize]", "write the files to a zip archive", (*REPL).cmdZip},
		{"/upload", "/upload <repo>", "push the files to a GitHub repository", (*REPL).cmdUpload},
		{"/repos", "/repos [user]", "list GitHub repositories", (*REPL).cmdRepos},
		{"/token", "/token [<token>|clear]", "set, clear or check the GitHub token", (*REPL).cmdToken},
		{"/attach", "/attach [path]", "attach a text file to the next message", (*REPL).cmdAttach},
		{"/speak", "/speak [path]", "read the last reply aloud into an audio file", (*REPL).cmdSpeak},
		{"/reset", "/reset", "start the conversation over", (*REPL).cmdReset},
		{"/history", "/history", "print the conversation", (*REPL).cmdHistory},
		{"/exit", "/exit", "leave", nil},
		{"/quit", "/quit", "leave", nil},
	}
}

func commandNames() []string {
	names := make([]string, len(commandTable))
	for i, c := range commandTable {
		names[i] = c.name
	}
	return names
}

func lookup(name string) (command, bool) {
	for _, c := range commandTable {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// splitFlags separates --flags from positional arguments.
func splitFlags(args []string) (pos []string, flags map[string]bool) {
	flags = make(map[string]bool)
	for _, a := range args {
		if strings.HasPrefix(a, "--") {
			flags[strings.TrimPrefix(a, "--")] = true
			continue
		}
		pos = append(pos, a)
	}
	return pos, flags
}

func usageError(name string) error {
	c, _ := lookup(name)
	return fmt.Errorf("usage: %s", c.usage)
}

func (r *REPL) fileArg(name string, args []string) (extract.ExtractedFile, error) {
	if len(args) != 1 {
		return extract.ExtractedFile{}, usageError(name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return extract.ExtractedFile{}, usageError(name)
	}
	return r.state.File(n)
}

func (r *REPL) requireFiles() error {
	if len(r.state.Files) == 0 {
		return fmt.Errorf("no files in the last reply")
	}
	return nil
}

func (r *REPL) cmdHelp(_ context.Context, _ []string) error {
	for _, c := range commandTable {
		r.printf("  %-28s %s\n", c.usage, c.help)
	}
	r.printf("Anything else is sent to Maya.\n")
	return nil
}

func (r *REPL) cmdFiles(_ context.Context, _ []string) error {
	if err := r.requireFiles(); err != nil {
		return err
	}
	r.printCards(r.state.Files)
	return nil
}

func (r *REPL) cmdShow(_ context.Context, args []string) error {
	f, err := r.fileArg("/show", args)
	if err != nil {
		return err
	}
	r.printf("%s\n", extract.Fence(f))
	return nil
}

func (r *REPL) cmdCopy(_ context.Context, args []string) error {
	f, err := r.fileArg("/copy", args)
	if err != nil {
		return err
	}
	if r.deps.Clipboard == nil {
		return fmt.Errorf("clipboard not available")
	}
	if err := r.deps.Clipboard.Copy(f.Content); err != nil {
		return err
	}
	r.printf("📋 %s copied\n", f.Name)
	return nil
}

func (r *REPL) cmdSave(ctx context.Context, args []string) error {
	pos, flags := splitFlags(args)
	if len(pos) != 1 {
		return usageError("/save")
	}
	if err := r.requireFiles(); err != nil {
		return err
	}
	results, err := r.deps.Exporter.WriteDir(ctx, pos[0], r.state.Files, flags["sanitize"])
	if err != nil {
		return err
	}
	r.printResults(results)
	return nil
}

func (r *REPL) cmdZip(_ context.Context, args []string) error {
	pos, flags := splitFlags(args)
	if len(pos) != 1 {
		return usageError("/zip")
	}
	if err := r.requireFiles(); err != nil {
		return err
	}
	out, err := os.Create(pos[0])
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	results, err := export.WriteZip(out, r.state.Files, flags["sanitize"])
	if cerr := out.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	r.printResults(results)
	r.printf("🗜  %s\n", pos[0])
	return nil
}

func (r *REPL) printResults(results []export.Result) {
	for _, res := range results {
		if res.OK() {
			r.printf("✅ %s (%d bytes)\n", res.Path, res.Bytes)
		} else {
			r.printf("❌ %s: %s\n", res.File, res.Error)
		}
	}
}

func (r *REPL) cmdUpload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("/upload")
	}
	if err := r.requireFiles(); err != nil {
		return err
	}
	if r.deps.GitHub == nil {
		return fmt.Errorf("GitHub not configured")
	}
	results, err := r.deps.GitHub.UploadFiles(ctx, args[0], r.state.Files)
	if err != nil {
		return err
	}
	ok, failed := github.Summarize(results)
	metrics.ObserveUploads(ok, failed)
	for _, res := range results {
		if res.Success {
			r.printf("✅ %s\n", res.File)
		} else {
			r.printf("❌ %s: %s\n", res.File, res.Error)
		}
	}
	r.printf("%d uploaded, %d failed\n", ok, failed)
	return nil
}

func (r *REPL) cmdRepos(ctx context.Context, args []string) error {
	if r.deps.GitHub == nil {
		return fmt.Errorf("GitHub not configured")
	}
	user := ""
	if len(args) > 0 {
		user = args[0]
	}
	repos, err := r.deps.GitHub.ListRepositories(ctx, user)
	if err != nil {
		return err
	}
	if len(repos) == 0 {
		r.printf("📭 no repositories\n")
		return nil
	}
	for _, repo := range repos {
		lock := ""
		if repo.Private {
			lock = " 🔒"
		}
		r.printf("- %s%s %s\n", repo.Name, lock, repo.HTMLURL)
	}
	return nil
}

func (r *REPL) cmdToken(_ context.Context, args []string) error {
	if r.deps.GitHub == nil {
		return fmt.Errorf("GitHub not configured")
	}
	creds := r.deps.GitHub.Credentials()
	switch {
	case len(args) == 0:
		if creds.HasToken() {
			r.printf("🔑 token configured for %s\n", r.deps.GitHub.Username())
		} else {
			r.printf("no token configured\n")
		}
		return nil
	case len(args) == 1 && args[0] == "clear":
		if err := creds.Clear(); err != nil {
			return err
		}
		r.printf("token cleared\n")
		return nil
	case len(args) == 1:
		if err := creds.SetToken(args[0]); err != nil {
			return err
		}
		r.printf("🔑 token saved\n")
		return nil
	default:
		return usageError("/token")
	}
}

func (r *REPL) cmdAttach(_ context.Context, args []string) error {
	if len(args) == 0 {
		if len(r.state.Pending) == 0 {
			r.printf("no attachments\n")
			return nil
		}
		r.printf("%s\n", strings.TrimSpace(attach.Summary(r.state.Pending)))
		return nil
	}
	a, err := attach.Load(strings.Join(args, " "), r.cfg.MaxAttachmentMB)
	if err != nil {
		return err
	}
	r.state.Attach(a)
	r.printf("%s %s (%s) attached\n", attach.Icon(a.Name), a.Name, attach.FormatSize(a.Size))
	return nil
}

func (r *REPL) cmdSpeak(ctx context.Context, args []string) error {
	if r.deps.Speaker == nil {
		return fmt.Errorf("speech not configured")
	}
	if r.state.LastReply == "" {
		return fmt.Errorf("nothing to read yet")
	}
	path := r.cfg.SpeechFile
	if len(args) > 0 {
		path = args[0]
	}
	audio, err := r.deps.Speaker.Synthesize(ctx, r.state.LastReply)
	metrics.ObserveSpeech(err)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	r.printf("🔊 %s\n", path)
	return nil
}

func (r *REPL) cmdReset(_ context.Context, _ []string) error {
	r.deps.Session.Reset()
	r.state.Reset()
	r.printGreeting()
	return nil
}

func (r *REPL) cmdHistory(_ context.Context, _ []string) error {
	for _, t := range r.deps.Session.History() {
		who := "tú"
		if t.Role != ai.RoleUser {
			who = "maya"
		}
		r.printf("[%s] %s: %s\n", t.At.Format("15:04"), who, t.Text)
	}
	return nil
}
