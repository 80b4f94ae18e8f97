package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/reflexion-agent/internal/adapters/storage/jsonl"
	"github.com/PabloGalante/reflexion-agent/internal/app/questions"
	"github.com/PabloGalante/reflexion-agent/internal/config"
	"github.com/PabloGalante/reflexion-agent/internal/domain"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Manage the question bank",
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every question in the bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		bank := newBank()
		for _, entry := range bank.All() {
			fmt.Printf("%.2f  [%s]  %s\n", entry.Weight, entry.Language, entry.Question)
		}
		return nil
	},
}

var (
	addLang   string
	addWeight float64
)

var questionsAddCmd = &cobra.Command{
	Use:   "add <question>",
	Short: "Add a question to the bank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, ok := domain.ParseLanguage(addLang)
		if !ok {
			return fmt.Errorf("unsupported language %q", addLang)
		}
		if addWeight < 0 || addWeight > 1 {
			return fmt.Errorf("weight must be between 0 and 1")
		}
		bank := newBank()
		if !bank.Add(domain.QuestionEntry{Question: args[0], Language: lang, Weight: addWeight}) {
			return fmt.Errorf("question already in the bank")
		}
		return nil
	},
}

var questionsRemoveCmd = &cobra.Command{
	Use:   "remove <question>",
	Short: "Remove a question from the bank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bank := newBank()
		if !bank.Delete(args[0]) {
			return fmt.Errorf("question not found")
		}
		return nil
	},
}

func init() {
	questionsAddCmd.Flags().StringVar(&addLang, "lang", "en", "question language (en, es, cz)")
	questionsAddCmd.Flags().Float64Var(&addWeight, "weight", 0.5, "draw weight between 0 and 1")
	questionsCmd.AddCommand(questionsListCmd, questionsAddCmd, questionsRemoveCmd)
}

func newBank() *questions.Service {
	cfg := config.Load()
	return questions.NewService(jsonl.NewQuestionFile(cfg.QuestionsPath))
}
