package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/akolanti/insightRAG/internal/app"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/internal/mcpServer"
	"github.com/spf13/cobra"
)

var errNothingLoaded = errors.New("no document could be loaded")

func newIngestCmd(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [path]",
		Short: "Load a file or a directory into the index",
		Long: `Processes a single file, or every supported file directly inside a directory,
and indexes its chunks. Files that are already indexed are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := env.open(cmd, app.WithoutWeb())
			if err != nil {
				return err
			}
			defer session.Close()

			results, err := session.RAG.LoadDocuments(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printLoadResults(cmd, results)
			for _, r := range results {
				if r.Success {
					return nil
				}
			}
			return errNothingLoaded
		},
	}
}

func newAskCmd(env *commandEnv) *cobra.Command {
	var (
		noWeb      bool
		noDocs     bool
		maxResults int
		taskType   string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one question from the indexed documents and the web",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxResults < 0 {
				return fmt.Errorf("--max-results must not be negative")
			}
			req := commonModels.NewQueryRequest(strings.Join(args, " "), maxResults)
			req.IncludeWeb = !noWeb
			req.IncludeDocuments = !noDocs
			if taskType != "" {
				t, err := commonModels.ParseTaskType(taskType)
				if err != nil {
					return err
				}
				req.TaskType = t
			}

			var opts []app.Option
			if noWeb {
				opts = append(opts, app.WithoutWeb())
			}
			session, err := env.open(cmd, opts...)
			if err != nil {
				return err
			}
			defer session.Close()

			resp := session.RAG.AskQuestion(cmd.Context(), req)
			if asJSON {
				return writeJSON(cmd, resp)
			}
			printAnswer(cmd, resp)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noWeb, "no-web", false, "skip web search")
	cmd.Flags().BoolVar(&noDocs, "no-docs", false, "skip the document index")
	cmd.Flags().IntVarP(&maxResults, "max-results", "n", 0, "results passed to the model (default TOP_K_RESULTS)")
	cmd.Flags().StringVar(&taskType, "task-type", "", "skip classification: document_query, web_search, hybrid_search, summarization or analysis")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the response as JSON")
	return cmd
}

func newStatusCmd(env *commandEnv) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index size and the models in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := env.open(cmd, app.WithoutWeb())
			if err != nil {
				return err
			}
			defer session.Close()

			status := session.RAG.Status(cmd.Context())
			if asJSON {
				return writeJSON(cmd, status)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", titleStyle.Render("System status"))
			fmt.Fprintf(out, "  Loaded documents: %d\n", status.LoadedDocuments)
			fmt.Fprintf(out, "  Indexed chunks:   %d\n", status.IndexedChunks)
			fmt.Fprintf(out, "  Ready:            %t\n", status.SystemReady)
			fmt.Fprintf(out, "  Model:            %s\n", status.Model)
			fmt.Fprintf(out, "  Embedding model:  %s\n", status.EmbeddingModel)
			fmt.Fprintf(out, "  File types:       %s\n", strings.Join(status.SupportedFileTypes, " "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the status as JSON")
	return cmd
}

func newMCPCmd(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the assistant as MCP tools over stdio",
		Long: `Starts a Model Context Protocol server on stdin/stdout exposing ask_question,
search_documents, search_web and load_documents. Logs go to LOG_FILE only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer session.Close()
			return mcpServer.New(session.RAG).Run(cmd.Context())
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
