package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/reflexion-agent/internal/app/reflection"
	"github.com/PabloGalante/reflexion-agent/internal/domain"
	"github.com/PabloGalante/reflexion-agent/internal/observability"
)

// Service is the second-level pass over a completed reflection tree: it
// analyzes the rendered report into a main question + answer summary, runs
// the single-entry analysis over that summary, and produces one synthetic
// Summary reflection plus the session's insight list.
type Service struct {
	llm     domain.AnalysisClient
	archive domain.JournalArchive // optional; nil disables Archive

	summary  *domain.Reflection
	insights []domain.Insight
}

// NewService creates a summary service. archive may be nil when the session
// outcome is not persisted to files.
func NewService(llm domain.AnalysisClient, archive domain.JournalArchive) *Service {
	return &Service{llm: llm, archive: archive}
}

// Summary returns the synthetic summary entry, or nil before a successful
// Generate.
func (s *Service) Summary() *domain.Reflection {
	return s.summary
}

// Insights returns the insight list from the last successful Generate.
func (s *Service) Insights() []domain.Insight {
	return s.insights
}

// Generate runs the two-stage summary pass over a tree. It returns true only
// when the report is non-empty and both analysis calls produced data; any
// failure leaves the service without a partial summary.
func (s *Service) Generate(ctx context.Context, tree *reflection.Manager) bool {
	log := observability.LoggerFromContext(ctx).With("subject", tree.Subject())

	report := tree.Report()
	if report == "" {
		log.Warn("empty report, nothing to summarize")
		return false
	}
	lang := tree.Language()

	reportAnalysis := s.llm.AnalyzeReport(ctx, report, lang)
	if reportAnalysis == nil {
		log.Warn("report analysis not generated")
		return false
	}

	entryAnalysis := s.llm.AnalyzeEntry(ctx, reportAnalysis.MainQuestion, reportAnalysis.AnswerSummary, lang)
	if entryAnalysis == nil {
		log.Warn("summary entry analysis not generated")
		return false
	}

	entry := domain.NewReflection(reportAnalysis.MainQuestion, lang)
	entry.Type = domain.TypeSummary
	entry.Answer = reportAnalysis.AnswerSummary
	entry.Themes = entryAnalysis.Themes
	entry.Sentiment = entryAnalysis.Sentiment
	// Beliefs on the summary stay informational annotations; they are not
	// expanded into further children.
	var beliefs []string
	for _, belief := range entryAnalysis.Beliefs {
		beliefs = append(beliefs, fmt.Sprintf("%s: %s", belief.Type, belief.Statement))
	}
	entry.Context = strings.Join(beliefs, "\n")

	s.summary = entry
	s.insights = reportAnalysis.Insights

	log.Info("journal summary generated", "insights", len(s.insights))
	return true
}

// Archive persists the session outcome through the journal archive. It fails
// when no summary has been generated yet or no archive is configured.
func (s *Service) Archive(ctx context.Context, tree *reflection.Manager) error {
	if s.summary == nil {
		return fmt.Errorf("archive: no summary generated")
	}
	if s.archive == nil {
		return fmt.Errorf("archive: no journal archive configured")
	}
	if err := s.archive.SaveJournal(tree.Subject(), tree.All(), s.summary, s.insights); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	observability.LoggerFromContext(ctx).Info("journal archived", "subject", tree.Subject())
	return nil
}
