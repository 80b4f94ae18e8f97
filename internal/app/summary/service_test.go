package summary_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/reflexion-agent/internal/adapters/llm"
	"github.com/PabloGalante/reflexion-agent/internal/app/reflection"
	"github.com/PabloGalante/reflexion-agent/internal/app/summary"
	"github.com/PabloGalante/reflexion-agent/internal/domain"
)

func answeredTree(t *testing.T) *reflection.Manager {
	t.Helper()
	m := reflection.NewManager("test-subject", domain.LangEN, llm.NewMock())
	root := m.SeedRoot(domain.QuestionEntry{Question: "What did I accomplish today?"})
	m.Answer(root.ID, "Shipped the report feature.")
	return m
}

func TestGenerateProducesSummaryAndInsights(t *testing.T) {
	mock := llm.NewMock()
	mock.ReportFn = func(ctx context.Context, report string, lang domain.Language) *domain.ReportAnalysis {
		require.Contains(t, report, "What did I accomplish today?")
		return &domain.ReportAnalysis{
			MainQuestion:  "What did today add up to?",
			AnswerSummary: "A productive day centered on finishing work.",
			Insights: []domain.Insight{
				{Insight: "Finishing matters more than starting.", Goal: "Close loops", Tasks: []string{"Pick one open task"}, Importance: domain.ImportanceHigh},
			},
		}
	}
	mock.EntryFn = func(ctx context.Context, question, answer string, lang domain.Language) *domain.EntryAnalysis {
		require.Equal(t, "What did today add up to?", question)
		require.Equal(t, "A productive day centered on finishing work.", answer)
		return &domain.EntryAnalysis{
			Themes:    []string{"productivity"},
			Sentiment: domain.SentimentSlightlyPositive,
			Beliefs: []domain.Belief{
				{Type: domain.TypeAssumption, Statement: "Output defines a good day", ChallengeQuestion: "ignored"},
				{Type: domain.TypeBlindSpot, Statement: "Rest went unmentioned", ChallengeQuestion: "ignored"},
			},
		}
	}

	svc := summary.NewService(mock, nil)
	require.True(t, svc.Generate(context.Background(), answeredTree(t)))

	entry := svc.Summary()
	require.NotNil(t, entry)
	require.Equal(t, domain.TypeSummary, entry.Type)
	require.Equal(t, "What did today add up to?", entry.Question)
	require.Equal(t, "A productive day centered on finishing work.", entry.Answer)
	require.Equal(t, []string{"productivity"}, entry.Themes)
	require.Equal(t, domain.SentimentSlightlyPositive, entry.Sentiment)
	// Beliefs land as newline-joined annotations, never as children.
	require.Equal(t, "Assumption: Output defines a good day\nBlind Spot: Rest went unmentioned", entry.Context)
	require.Empty(t, entry.ChildrenIDs)

	require.Len(t, svc.Insights(), 1)
	require.Equal(t, domain.ImportanceHigh, svc.Insights()[0].Importance)
}

func TestGenerateFailsOnEmptyReport(t *testing.T) {
	svc := summary.NewService(llm.NewMock(), nil)
	empty := reflection.NewManager("test-subject", domain.LangEN, llm.NewMock())

	require.False(t, svc.Generate(context.Background(), empty))
	require.Nil(t, svc.Summary())
	require.Empty(t, svc.Insights())
}

func TestGenerateFailsWhenReportAnalysisFails(t *testing.T) {
	mock := llm.NewMock()
	mock.ReportFn = func(context.Context, string, domain.Language) *domain.ReportAnalysis { return nil }

	svc := summary.NewService(mock, nil)
	require.False(t, svc.Generate(context.Background(), answeredTree(t)))
	require.Nil(t, svc.Summary())
	require.Empty(t, svc.Insights())
}

func TestGenerateFailsWhenEntryAnalysisFails(t *testing.T) {
	mock := llm.NewMock()
	mock.EntryFn = func(context.Context, string, string, domain.Language) *domain.EntryAnalysis { return nil }

	svc := summary.NewService(mock, nil)
	// Clean no-op: no partial summary survives the second-stage failure.
	require.False(t, svc.Generate(context.Background(), answeredTree(t)))
	require.Nil(t, svc.Summary())
	require.Empty(t, svc.Insights())
}

type recordingArchive struct {
	subject domain.SubjectID
	nodes   int
	summary *domain.Reflection
}

func (a *recordingArchive) SaveJournal(subject domain.SubjectID, reflections []*domain.Reflection, summary *domain.Reflection, insights []domain.Insight) error {
	a.subject = subject
	a.nodes = len(reflections)
	a.summary = summary
	return nil
}

func TestArchiveRequiresSummary(t *testing.T) {
	archive := &recordingArchive{}
	svc := summary.NewService(llm.NewMock(), archive)
	tree := answeredTree(t)

	require.Error(t, svc.Archive(context.Background(), tree))

	require.True(t, svc.Generate(context.Background(), tree))
	require.NoError(t, svc.Archive(context.Background(), tree))
	require.Equal(t, domain.SubjectID("test-subject"), archive.subject)
	require.Equal(t, 1, archive.nodes)
	require.NotNil(t, archive.summary)
}
