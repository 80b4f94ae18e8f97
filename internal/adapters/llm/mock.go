package llm

import (
	"context"

	"github.com/PabloGalante/reflexion-agent/internal/domain"
)

// Mock is a deterministic domain.AnalysisClient for local mode and tests.
// The hooks override the canned replies when set; a hook returning nil
// simulates an analysis failure.
type Mock struct {
	EntryFn  func(ctx context.Context, question, answer string, lang domain.Language) *domain.EntryAnalysis
	ReportFn func(ctx context.Context, report string, lang domain.Language) *domain.ReportAnalysis
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) AnalyzeEntry(ctx context.Context, question, answer string, lang domain.Language) *domain.EntryAnalysis {
	if m.EntryFn != nil {
		return m.EntryFn(ctx, question, answer, lang)
	}
	return &domain.EntryAnalysis{
		Themes:    []string{"reflection"},
		Sentiment: domain.SentimentNeutral,
		Beliefs: []domain.Belief{
			{
				Type:              domain.TypeAssumption,
				Statement:         "There is only one way to look at this.",
				ChallengeQuestion: "What would someone who disagrees with you say about this?",
			},
		},
	}
}

func (m *Mock) AnalyzeReport(ctx context.Context, report string, lang domain.Language) *domain.ReportAnalysis {
	if m.ReportFn != nil {
		return m.ReportFn(ctx, report, lang)
	}
	return &domain.ReportAnalysis{
		MainQuestion:  "What mattered most today?",
		AnswerSummary: "A short day's worth of reflections.",
		Insights: []domain.Insight{
			{
				Insight:    "Writing things down makes them smaller.",
				Goal:       "Keep a daily journaling habit.",
				Tasks:      []string{"Answer one question every evening."},
				Themes:     []string{"habits"},
				Importance: domain.ImportanceMedium,
			},
		},
	}
}
