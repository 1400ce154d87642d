package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/duynguyendang/maya/internal/clipboard"
	"github.com/duynguyendang/maya/internal/manager"
	"github.com/duynguyendang/maya/pkg/export"
	"github.com/duynguyendang/maya/pkg/extract"
	"github.com/duynguyendang/maya/pkg/mcp"
	"github.com/duynguyendang/maya/pkg/repl"
	"github.com/duynguyendang/maya/pkg/server"
	"github.com/duynguyendang/maya/pkg/service/ai"
)

// Version information (set at build time)
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "maya",
		Short:         "Maya - a coding chat assistant that turns replies into files",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newChatCmd(), newMCPCmd(), newExtractCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			sessions := a.sessions()
			defer sessions.CloseAll()

			deps := server.Deps{
				Sessions:        sessions,
				Chat:            a.chat,
				GitHub:          a.github,
				Checker:         a.checker,
				MaxAttachmentMB: a.cfg.MaxAttachmentMB,
				Logger:          a.logger,
			}
			if a.speaker != nil {
				deps.Speaker = a.speaker
			}

			if port == "" {
				port = a.cfg.Port
			}
			return server.NewServer(deps).Run(cmd.Context(), ":"+port)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default $PORT or 8080)")
	return cmd
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with Maya in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := repl.DefaultConfig()
			cfg.MaxAttachmentMB = a.cfg.MaxAttachmentMB

			deps := repl.Deps{
				Chat:      a.chat,
				Session:   ai.NewSession(uuid.NewString(), a.greeting()),
				GitHub:    a.github,
				Clipboard: clipboard.NewService(),
				Exporter:  export.NewExporter(a.logger),
				Checker:   a.checker,
				Logger:    a.logger,
			}
			if a.speaker != nil {
				deps.Speaker = a.speaker
			}
			return repl.New(cfg, deps, cmd.OutOrStdout()).Run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

func newMCPCmd() *cobra.Command {
	var withChat bool
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the extraction tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), withChat)
			if err != nil {
				return err
			}
			defer a.Close()

			var sessions *manager.SessionManager
			if withChat {
				sessions = a.sessions()
				defer sessions.CloseAll()
			}
			return mcp.Run(cmd.Context(), mcp.NewMCPServer(a.chat, sessions, a.checker, a.logger), version)
		},
	}
	cmd.Flags().BoolVar(&withChat, "chat", false, "also expose a chat tool backed by the configured model")
	return cmd
}

func newExtractCmd() *cobra.Command {
	var (
		outDir   string
		zipPath  string
		sanitize bool
	)
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract fenced files from markdown (a file or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			text, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			files := extract.Extract(string(text))
			cards := extract.Cards(files)
			a.checker.Annotate(files, cards)

			var results []export.Result
			if outDir != "" {
				res, err := export.NewExporter(a.logger).WriteDir(cmd.Context(), outDir, files, sanitize)
				if err != nil {
					return err
				}
				results = append(results, res...)
			}
			if zipPath != "" {
				res, err := writeZip(zipPath, files, sanitize)
				if err != nil {
					return err
				}
				results = append(results, res...)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"files":   files,
				"cards":   cards,
				"results": results,
			})
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "write the files into this directory")
	cmd.Flags().StringVar(&zipPath, "zip", "", "write the files into this zip archive")
	cmd.Flags().BoolVar(&sanitize, "sanitize", false, "sanitize filenames before writing")
	return cmd
}

func writeZip(path string, files []extract.ExtractedFile, sanitize bool) ([]export.Result, error) {
	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	results, err := export.WriteZip(out, files, sanitize)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = cerr
	}
	return results, err
}
