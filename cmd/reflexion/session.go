package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/PabloGalante/reflexion-agent/internal/adapters/storage/jsonl"
	"github.com/PabloGalante/reflexion-agent/internal/app/questions"
	"github.com/PabloGalante/reflexion-agent/internal/app/reflection"
	"github.com/PabloGalante/reflexion-agent/internal/app/summary"
	"github.com/PabloGalante/reflexion-agent/internal/config"
	"github.com/PabloGalante/reflexion-agent/internal/domain"
)

var (
	sessionSubject string
	sessionResume  bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Run one interactive journaling session",
	RunE:  runSession,
}

func init() {
	sessionCmd.Flags().StringVar(&sessionSubject, "subject", "", "subject id (defaults to a fresh session id)")
	sessionCmd.Flags().BoolVar(&sessionResume, "resume", false, "load the subject's saved tree before starting")
}

func runSession(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Load()

	analysis := buildAnalysisClient(ctx, cfg)
	store, closeStore := buildReflectionStore(ctx, cfg)
	if closeStore != nil {
		defer closeStore()
	}

	subject := domain.SubjectID(sessionSubject)
	if subject == "" {
		subject = domain.SubjectID(uuid.NewString())
	}

	tree := reflection.NewManager(subject, cfg.DefaultLanguage, analysis)
	if sessionResume {
		if err := tree.LoadFrom(store); err != nil {
			return fmt.Errorf("loading reflections: %w", err)
		}
	}

	if tree.RootID() == "" {
		bank := questions.NewService(jsonl.NewQuestionFile(cfg.QuestionsPath))
		entry, ok := bank.RandomEntry()
		if !ok {
			entry = domain.QuestionEntry{Question: "What is on your mind today?", Language: cfg.DefaultLanguage, Weight: 0.5}
		}
		tree.SeedRoot(entry)
	}

	in := bufio.NewScanner(os.Stdin)
	fmt.Println("Answer each question. Finish an answer with an empty line.")
	fmt.Println("Commands: /skip (later), /drop (delete question), /done (stop answering).")

answering:
	for {
		node := tree.RandomUnanswered()
		if node == nil {
			break
		}

		fmt.Printf("\n%s\n", node.Question)
		if node.Context != "" {
			fmt.Printf("(%s: %s)\n", node.Type, node.Context)
		}
		fmt.Print("> ")

		var lines []string
		for in.Scan() {
			line := in.Text()
			switch strings.TrimSpace(line) {
			case "/done":
				break answering
			case "/skip":
				continue answering
			case "/drop":
				tree.Delete(node.ID)
				continue answering
			}
			if line == "" {
				break
			}
			lines = append(lines, line)
		}
		answer := strings.TrimSpace(strings.Join(lines, "\n"))
		if answer == "" {
			continue
		}

		tree.Answer(node.ID, answer)
		if !tree.Analyze(ctx, node.ID) {
			fmt.Println("(analysis unavailable, you can retry this entry later)")
		}
	}

	tree.DeleteUnanswered()

	analyzed, total := tree.Statistics()
	fmt.Printf("\nSession done: %d reflections, %d analyzed.\n", total, analyzed)

	report := tree.Report()
	if report == "" {
		fmt.Println("Nothing answered, nothing to summarize.")
		return nil
	}
	fmt.Printf("\n%s\n", report)

	svc := summary.NewService(analysis, jsonl.NewArchive(cfg.DataDir))
	if svc.Generate(ctx, tree) {
		printSummary(svc)
		if err := svc.Archive(ctx, tree); err != nil {
			fmt.Fprintf(os.Stderr, "archiving failed: %v\n", err)
		}
	} else {
		fmt.Println("Summary unavailable.")
	}

	if err := tree.SaveTo(store); err != nil {
		return fmt.Errorf("saving reflections: %w", err)
	}
	return nil
}

func printSummary(svc *summary.Service) {
	entry := svc.Summary()
	fmt.Printf("\n## %s\n\n%s\n", entry.Question, entry.Answer)
	if entry.Context != "" {
		fmt.Printf("\n%s\n", entry.Context)
	}
	fmt.Printf("\nSentiment: %s  Themes: %s\n", entry.Sentiment, strings.Join(entry.Themes, ", "))

	for _, insight := range svc.Insights() {
		fmt.Printf("\n[%s] %s\n  Goal: %s\n", insight.Importance, insight.Insight, insight.Goal)
		for _, task := range insight.Tasks {
			fmt.Printf("  - %s\n", task)
		}
	}
}
