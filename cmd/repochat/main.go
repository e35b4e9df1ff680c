// Package main implements the repochat CLI: index a Git repository, then
// ask questions about its code.
package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repochat/internal/config"
	"github.com/fyrsmithlabs/repochat/internal/embeddings"
	"github.com/fyrsmithlabs/repochat/internal/logging"
	"github.com/fyrsmithlabs/repochat/internal/pipeline"
	"github.com/fyrsmithlabs/repochat/internal/rag"
	"github.com/fyrsmithlabs/repochat/internal/vectorstore"
)

var (
	// configPath is the optional config file location.
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "repochat",
	Short: "Chat with a Git repository",
	Long: `repochat clones a Git repository, indexes its source files into a local
vector store, and answers questions about the code grounded in the indexed
content.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (YAML)")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index <repo-url>",
	Short: "Clone and index a repository",
	Long: `Clone a repository, select its source files, and index them into the
vector store. Re-indexing a repository replaces its previous index.

Examples:
  repochat index https://github.com/user/project
  repochat index git@github.com:user/project.git`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

var askCmd = &cobra.Command{
	Use:   "ask <repo-url> <question>",
	Short: "Ask a single question about an indexed repository",
	Long: `Ask a question about a repository indexed with "repochat index".

Examples:
  repochat ask https://github.com/user/project "where is the entry point?"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat <repo-url>",
	Short: "Interactive question session about an indexed repository",
	Long: `Start an interactive session against a repository indexed with
"repochat index". Enter "exit" or "quit" to leave.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

// app holds the wired components shared by all commands.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  vectorstore.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	embedder, err := embeddings.NewService(cfg.Embeddings)
	if err != nil {
		return nil, err
	}

	store, err := vectorstore.New(cfg.Store, embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	return &app{cfg: cfg, logger: logger, store: store}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func runIndex(cmd *cobra.Command, args []string) error {
	repoURL := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	p, err := pipeline.New(a.cfg, a.store, a.logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexing %s ...\n", repoURL)

	result, err := p.Index(cmd.Context(), repoURL)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color.New(color.FgGreen).Fprintf(out, "Indexed %s\n", repoURL)
	fmt.Fprintf(out, "  files:  %d\n", result.Documents)
	fmt.Fprintf(out, "  chunks: %d\n", result.Chunks)
	if len(result.Stats.Languages) > 0 {
		fmt.Fprintln(out, "  languages:")
		for _, line := range languageLines(result.Stats.Languages) {
			fmt.Fprintf(out, "    %s\n", line)
		}
	}
	return nil
}

// languageLines renders the language breakdown, largest share first.
func languageLines(languages map[string]float64) []string {
	keys := make([]string, 0, len(languages))
	for key := range languages {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if languages[keys[i]] != languages[keys[j]] {
			return languages[keys[i]] > languages[keys[j]]
		}
		return keys[i] < keys[j]
	})

	lines := make([]string, len(keys))
	for i, key := range keys {
		lines[i] = fmt.Sprintf("%-12s %5.2f%%", key, languages[key])
	}
	return lines
}

func runAsk(cmd *cobra.Command, args []string) error {
	repoURL := args[0]
	question := strings.Join(args[1:], " ")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	svc, err := rag.NewService(a.cfg.LLM, a.store, a.logger)
	if err != nil {
		return err
	}

	answer, err := svc.Ask(cmd.Context(), pipeline.CollectionForRepo(repoURL), question)
	if err != nil {
		return err
	}

	printAnswer(cmd, answer)
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	repoURL := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	svc, err := rag.NewService(a.cfg.LLM, a.store, a.logger)
	if err != nil {
		return err
	}

	collection := pipeline.CollectionForRepo(repoURL)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Chatting about %s. Enter \"exit\" to leave.\n", repoURL)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		color.New(color.FgCyan).Fprint(out, "you> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		answer, err := svc.Ask(cmd.Context(), collection, question)
		if err != nil {
			// Keep the session alive on transient failures.
			color.New(color.FgRed).Fprintf(out, "Sorry, I encountered an error: %v\n", err)
			continue
		}
		printAnswer(cmd, answer)
	}
	return scanner.Err()
}

func printAnswer(cmd *cobra.Command, answer *rag.Answer) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, answer.Text)
	if len(answer.Sources) > 0 {
		color.New(color.Faint).Fprintf(out, "sources: %s\n", strings.Join(answer.Sources, ", "))
	}
}
