package cli

import (
	"bufio"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/spf13/cobra"
)

var quitWords = map[string]struct{}{"quit": {}, "exit": {}, "q": {}}

func newChatCmd(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Load documents and ask questions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, env)
		},
	}
}

func runChat(cmd *cobra.Command, env *commandEnv) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("insightRAG Support Agent"))
	fmt.Fprintln(out, strings.Repeat("=", 50))

	session, err := env.open(cmd)
	if err != nil {
		return err
	}
	defer session.Close()

	in := bufio.NewScanner(cmd.InOrStdin())
	fmt.Fprintf(out, "%s Documents directory or file [%s]: ", tag("INPUT"), session.DocumentsDir)
	path := session.DocumentsDir
	if in.Scan() {
		if typed := strings.TrimSpace(in.Text()); typed != "" {
			path = typed
		}
	}

	fmt.Fprintf(out, "%s Loading documents...\n", tag("PROCESSING"))
	results, err := session.RAG.LoadDocuments(cmd.Context(), path)
	if err != nil {
		fmt.Fprintf(out, "%s %v\n", errorStyle.Render("[ERROR]"), err)
	} else {
		printLoadResults(cmd, results)
	}

	status := session.RAG.Status(cmd.Context())
	fmt.Fprintf(out, "\n%s System ready! Loaded %d documents\n", tag("READY"), status.LoadedDocuments)
	fmt.Fprintf(out, "\n%s Ask questions (type 'quit' to exit):\n", tag("CHAT"))

	for {
		fmt.Fprintln(out, "\n"+mutedStyle.Render(strings.Repeat("-", dividerWidth)))
		fmt.Fprintf(out, "%s Question: ", tag("Q"))
		if !in.Scan() {
			break
		}
		question := strings.TrimSpace(in.Text())
		if _, quit := quitWords[strings.ToLower(question)]; quit {
			break
		}
		if question == "" {
			continue
		}

		fmt.Fprintf(out, "%s Analyzing question...\n", tag("PROCESSING"))
		resp := session.RAG.AskQuestion(cmd.Context(), commonModels.NewQueryRequest(question, 0))
		printAnswer(cmd, resp)
	}
	fmt.Fprintf(out, "\n%s Goodbye!\n", tag("EXIT"))
	return in.Err()
}

func printLoadResults(cmd *cobra.Command, results map[string]commonModels.LoadResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s Processing results:\n", tag("RESULTS"))
	paths := make([]string, 0, len(results))
	for p := range results {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		r := results[p]
		msg := okStyle.Render(r.Message)
		if !r.Success {
			msg = errorStyle.Render(r.Message)
		}
		fmt.Fprintf(out, "   %s: %s\n", filepath.Base(p), msg)
	}
}

func printAnswer(cmd *cobra.Command, resp commonModels.QueryResponse) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n%s\n", tag("ANSWER"), answerStyle.Render(resp.Answer))
	fmt.Fprintf(out, "\n%s Processed in %s\n", tag("TIMING"), resp.FormattedTime())

	if line := sourcesLine(resp); line != "" {
		fmt.Fprintf(out, "%s %s\n", tag("SOURCES"), line)
	}
	fmt.Fprintf(out, "%s %s\n", tag("TASK"), commonModels.TaskLabel(resp.TaskType))
}

func sourcesLine(resp commonModels.QueryResponse) string {
	if !resp.HasSources || resp.TotalSources == 0 {
		return ""
	}
	if resp.TotalSources == 1 {
		return "Found relevant information in the document"
	}
	return fmt.Sprintf("Found relevant information in %d sections from %d document(s)", resp.TotalSources, resp.DistinctSources())
}
