package reflection_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/reflexion-agent/internal/adapters/llm"
	"github.com/PabloGalante/reflexion-agent/internal/app/reflection"
	"github.com/PabloGalante/reflexion-agent/internal/domain"
)

func newTestManager(t *testing.T, client domain.AnalysisClient) *reflection.Manager {
	t.Helper()
	if client == nil {
		client = llm.NewMock()
	}
	return reflection.NewManager("test-subject", domain.LangEN, client,
		reflection.WithRand(rand.New(rand.NewSource(1))))
}

// assertConsistent checks bidirectional parent/child linkage and the single
// root invariant over the whole tree.
func assertConsistent(t *testing.T, m *reflection.Manager) {
	t.Helper()

	roots := 0
	for _, node := range m.All() {
		if node.ParentID == "" {
			roots++
		} else {
			parent := m.Get(node.ParentID)
			require.NotNil(t, parent, "node %s has dangling parent %s", node.ID, node.ParentID)
			require.Contains(t, parent.ChildrenIDs, node.ID)
		}
		for _, childID := range node.ChildrenIDs {
			child := m.Get(childID)
			require.NotNil(t, child, "node %s has dangling child %s", node.ID, childID)
			require.Equal(t, node.ID, child.ParentID)
		}
	}
	require.LessOrEqual(t, roots, 1, "at most one root")
}

func accomplishAnalysis(ctx context.Context, question, answer string, lang domain.Language) *domain.EntryAnalysis {
	return &domain.EntryAnalysis{
		Themes:    []string{"work"},
		Sentiment: domain.SentimentPositive,
		Beliefs: []domain.Belief{
			{
				Type:              domain.TypeAssumption,
				Statement:         "I equate busyness with productivity",
				ChallengeQuestion: "What would 'enough' look like today?",
			},
		},
	}
}

func TestUpsertFirstNodeBecomesRoot(t *testing.T) {
	m := newTestManager(t, nil)

	root := m.SeedRoot(domain.QuestionEntry{Question: "What did I accomplish today?", Weight: 0.5})
	require.Equal(t, root.ID, m.RootID())
	require.Equal(t, domain.TypeOriginal, root.Type)
	require.Equal(t, domain.LangEN, root.Language)
	require.False(t, root.Answered())

	// Overwriting by id keeps the root.
	other := domain.NewReflection("edited?", domain.LangEN)
	other.ID = root.ID
	m.Upsert(other)
	require.Equal(t, root.ID, m.RootID())
	_, total := m.Statistics()
	require.Equal(t, 1, total)
}

func TestGetAbsentReturnsNil(t *testing.T) {
	m := newTestManager(t, nil)
	require.Nil(t, m.Get("missing"))
	require.Nil(t, m.Parent("missing"))
	require.Empty(t, m.Children("missing"))
	require.False(t, m.Answer("missing", "hi"))
	require.False(t, m.Delete("missing"))
}

func TestAnalyzeEndToEndScenario(t *testing.T) {
	mock := llm.NewMock()
	mock.EntryFn = accomplishAnalysis
	m := newTestManager(t, mock)
	ctx := context.Background()

	root := m.SeedRoot(domain.QuestionEntry{Question: "What did I accomplish today?"})

	// Unanswered: precondition failure, node untouched.
	require.False(t, m.Analyze(ctx, root.ID))
	require.False(t, root.Analyzed())
	require.Empty(t, root.ChildrenIDs)

	require.True(t, m.Answer(root.ID, "Shipped the report feature."))
	require.True(t, m.Analyze(ctx, root.ID))

	require.Equal(t, []string{"work"}, root.Themes)
	require.Equal(t, domain.SentimentPositive, root.Sentiment)
	require.Len(t, root.ChildrenIDs, 1)

	child := m.Children(root.ID)[0]
	require.Equal(t, "What would 'enough' look like today?", child.Question)
	require.Equal(t, domain.TypeAssumption, child.Type)
	require.Equal(t, "I equate busyness with productivity", child.Context)
	require.Equal(t, root.ID, child.ParentID)
	require.Equal(t, domain.LangEN, child.Language)
	require.False(t, child.Answered())

	assertConsistent(t, m)

	analyzed, total := m.Statistics()
	require.Equal(t, 1, analyzed)
	require.Equal(t, 2, total)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	calls := 0
	mock := llm.NewMock()
	mock.EntryFn = func(ctx context.Context, q, a string, lang domain.Language) *domain.EntryAnalysis {
		calls++
		return accomplishAnalysis(ctx, q, a, lang)
	}
	m := newTestManager(t, mock)
	ctx := context.Background()

	root := m.SeedRoot(domain.QuestionEntry{Question: "How was today?"})
	m.Answer(root.ID, "Busy but good.")

	require.True(t, m.Analyze(ctx, root.ID))
	themes := append([]string(nil), root.Themes...)
	children := append([]domain.ReflectionID(nil), root.ChildrenIDs...)

	// Second call is a no-op returning true, no duplicate children.
	require.True(t, m.Analyze(ctx, root.ID))
	require.Equal(t, 1, calls)
	require.Equal(t, themes, root.Themes)
	require.Equal(t, children, root.ChildrenIDs)
}

func TestAnalyzeFailureLeavesNodeUnchanged(t *testing.T) {
	mock := llm.NewMock()
	mock.EntryFn = func(context.Context, string, string, domain.Language) *domain.EntryAnalysis {
		return nil
	}
	m := newTestManager(t, mock)
	ctx := context.Background()

	root := m.SeedRoot(domain.QuestionEntry{Question: "How was today?"})
	m.Answer(root.ID, "Fine.")

	require.False(t, m.Analyze(ctx, root.ID))
	require.False(t, root.Analyzed())
	require.Equal(t, domain.SentimentNeutral, root.Sentiment)
	require.Empty(t, root.ChildrenIDs)

	// Eligible for retry once the client recovers.
	mock.EntryFn = accomplishAnalysis
	require.True(t, m.Analyze(ctx, root.ID))
	require.True(t, root.Analyzed())
}

func TestDeleteReparentsChildren(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	a := m.SeedRoot(domain.QuestionEntry{Question: "A?"})
	m.Answer(a.ID, "a")
	require.True(t, m.Analyze(ctx, a.ID))
	b := m.Children(a.ID)[0]
	m.Answer(b.ID, "b")
	require.True(t, m.Analyze(ctx, b.ID))
	c := m.Children(b.ID)[0]

	require.True(t, m.Delete(b.ID))

	require.Nil(t, m.Get(b.ID))
	require.Equal(t, a.ID, c.ParentID)
	require.Contains(t, a.ChildrenIDs, c.ID)
	require.NotContains(t, a.ChildrenIDs, b.ID)
	assertConsistent(t, m)
}

func TestDeleteRootClearsSession(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	a := m.SeedRoot(domain.QuestionEntry{Question: "A?"})
	m.Answer(a.ID, "a")
	require.True(t, m.Analyze(ctx, a.ID))
	require.NotEmpty(t, a.ChildrenIDs)

	require.True(t, m.Delete(a.ID))

	require.Empty(t, m.RootID())
	_, total := m.Statistics()
	require.Equal(t, 0, total)
	require.Empty(t, m.All())
}

func TestDeleteUnansweredPrunesFollowUps(t *testing.T) {
	mock := llm.NewMock()
	mock.EntryFn = accomplishAnalysis
	m := newTestManager(t, mock)
	ctx := context.Background()

	root := m.SeedRoot(domain.QuestionEntry{Question: "A?"})
	m.Answer(root.ID, "a")
	require.True(t, m.Analyze(ctx, root.ID))
	_, total := m.Statistics()
	require.Equal(t, 2, total)

	m.DeleteUnanswered()

	_, total = m.Statistics()
	require.Equal(t, 1, total)
	require.Empty(t, root.ChildrenIDs)
	require.Nil(t, m.RandomUnanswered())
	assertConsistent(t, m)
}

func TestRandomUnanswered(t *testing.T) {
	m := newTestManager(t, nil)
	require.Nil(t, m.RandomUnanswered())

	root := m.SeedRoot(domain.QuestionEntry{Question: "A?"})
	got := m.RandomUnanswered()
	require.NotNil(t, got)
	require.Equal(t, root.ID, got.ID)

	m.Answer(root.ID, "a")
	require.Nil(t, m.RandomUnanswered())
}

func TestAnalyzeAllIteratesSnapshot(t *testing.T) {
	mock := llm.NewMock()
	mock.EntryFn = accomplishAnalysis
	m := newTestManager(t, mock)
	ctx := context.Background()

	first := m.SeedRoot(domain.QuestionEntry{Question: "A?"})
	m.Answer(first.ID, "a")
	second := domain.NewReflection("B?", domain.LangEN)
	second.Answer = "b"
	second.ParentID = first.ID
	m.Upsert(second)
	first.ChildrenIDs = append(first.ChildrenIDs, second.ID)

	m.AnalyzeAll(ctx)

	// Both pre-existing answered nodes analyzed; children generated during
	// the pass stay unanswered and unanalyzed.
	require.True(t, first.Analyzed())
	require.True(t, second.Analyzed())
	analyzed, total := m.Statistics()
	require.Equal(t, 2, analyzed)
	require.Equal(t, 4, total)
	assertConsistent(t, m)
}

func TestLanguageInheritedAndDetected(t *testing.T) {
	mock := llm.NewMock()
	mock.EntryFn = accomplishAnalysis
	m := reflection.NewManager("s", domain.LangEN, mock)
	require.Equal(t, domain.LangEN, m.Language())

	root := m.SeedRoot(domain.QuestionEntry{Question: "Qué hiciste hoy?", Language: domain.LangES})
	require.Equal(t, domain.LangES, m.Language())

	m.Answer(root.ID, "trabajar")
	require.True(t, m.Analyze(context.Background(), root.ID))
	child := m.Children(root.ID)[0]
	require.Equal(t, domain.LangES, child.Language)
}

func TestHydrateRoundTrip(t *testing.T) {
	mock := llm.NewMock()
	mock.EntryFn = accomplishAnalysis
	m := newTestManager(t, mock)
	ctx := context.Background()

	root := m.SeedRoot(domain.QuestionEntry{Question: "A?"})
	m.Answer(root.ID, "a")
	require.True(t, m.Analyze(ctx, root.ID))

	clones := make([]*domain.Reflection, 0)
	for _, node := range m.All() {
		clones = append(clones, node.Clone())
	}

	restored := newTestManager(t, mock)
	restored.Hydrate(clones)

	require.Equal(t, root.ID, restored.RootID())
	analyzed, total := restored.Statistics()
	require.Equal(t, 1, analyzed)
	require.Equal(t, 2, total)
	assertConsistent(t, restored)
}
