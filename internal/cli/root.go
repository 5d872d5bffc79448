// Package cli is the terminal front end: an interactive chat loop plus one-shot commands.
package cli

import (
	"context"
	"io"

	"github.com/akolanti/insightRAG/internal/app"
	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/rag"
	"github.com/spf13/cobra"
)

// Session is what a command needs from the bootstrapped stack.
type Session struct {
	RAG          rag.Service
	DocumentsDir string
	Close        func()
}

// Factory builds a Session from the --env file. Tests replace it with a fake service.
type Factory func(ctx context.Context, envFile string, opts ...app.Option) (*Session, error)

// DefaultFactory loads settings, sends logs to the log file only and builds the full stack.
func DefaultFactory(ctx context.Context, envFile string, opts ...app.Option) (*Session, error) {
	settings, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	logCloser, err := app.InitLogging(settings, true)
	if err != nil {
		return nil, err
	}
	stack, err := app.Build(ctx, settings, opts...)
	if err != nil {
		logCloser.Close()
		return nil, err
	}
	return &Session{
		RAG:          stack.RAG,
		DocumentsDir: settings.DocumentsDir,
		Close: func() {
			stack.Close()
			logCloser.Close()
		},
	}, nil
}

type commandEnv struct {
	factory Factory
	envFile string
}

func (e *commandEnv) open(cmd *cobra.Command, opts ...app.Option) (*Session, error) {
	s, err := e.factory(cmd.Context(), e.envFile, opts...)
	if err != nil {
		return nil, err
	}
	if s.Close == nil {
		s.Close = func() {}
	}
	return s, nil
}

// NewRootCmd assembles the command tree. With no subcommand it starts the chat loop.
func NewRootCmd(factory Factory) *cobra.Command {
	if factory == nil {
		factory = DefaultFactory
	}
	env := &commandEnv{factory: factory}

	root := &cobra.Command{
		Use:   "insight",
		Short: "Ask questions about your documents and the web",
		Long: `insight loads PDF, Office, text and markdown documents into a local vector index
and answers questions from them, adding web search results when a question needs them.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, env)
		},
	}
	root.PersistentFlags().StringVar(&env.envFile, "env", ".env", "path to the .env file")

	root.AddCommand(
		newChatCmd(env),
		newIngestCmd(env),
		newAskCmd(env),
		newStatusCmd(env),
		newMCPCmd(env),
	)
	return root
}

// Execute runs the CLI against the real stack.
func Execute(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args []string) error {
	root := NewRootCmd(DefaultFactory)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
