package reflection_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/reflexion-agent/internal/app/reflection"
	"github.com/PabloGalante/reflexion-agent/internal/domain"
)

// buildTree wires nodes together by hand so report tests control answers and
// structure exactly.
func buildTree(t *testing.T, nodes ...*domain.Reflection) *reflection.Manager {
	t.Helper()
	m := newTestManager(t, nil)
	for _, node := range nodes {
		m.Upsert(node)
	}
	return m
}

func child(parent *domain.Reflection, question string) *domain.Reflection {
	node := domain.NewReflection(question, parent.Language)
	node.ParentID = parent.ID
	node.Type = domain.TypeAssumption
	parent.ChildrenIDs = append(parent.ChildrenIDs, node.ID)
	return node
}

func TestReportShape(t *testing.T) {
	a := domain.NewReflection("What did I accomplish today?", domain.LangEN)
	a.Answer = "Shipped the report feature."
	b := child(a, "What would enough look like?")
	b.Answer = "A finished, tested feature."
	b.Context = "I equate busyness with productivity"
	c := child(a, "Who says it must be perfect?")
	// c stays unanswered.

	m := buildTree(t, a, b, c)
	report := m.Report()

	require.Contains(t, report, "# What did I accomplish today?\n\nShipped the report feature.\n\n")
	require.Contains(t, report, "## What would enough look like?\n\n**Assumption**: I equate busyness with productivity\n\nA finished, tested feature.\n\n")
	require.NotContains(t, report, c.Question)

	// Depth is encoded purely through heading markers: root once, child twice.
	require.True(t, strings.HasPrefix(report, "# "))
	require.Equal(t, 1, strings.Count(report, "\n## "))
}

func TestRenderUnansweredNodeIsEmpty(t *testing.T) {
	a := domain.NewReflection("Unanswered root", domain.LangEN)
	b := child(a, "Answered child")
	b.Answer = "Still invisible through the root."

	m := buildTree(t, a, b)

	// Recursion starts at the unanswered node, so even answered descendants
	// are unreachable through this call.
	require.Equal(t, "", m.Render(a.ID, "# "))
	require.Equal(t, "", m.Report())

	// Rendering the answered child directly still works.
	require.Contains(t, m.Render(b.ID, "# "), "Answered child")
}

func TestReportEmptyTree(t *testing.T) {
	m := newTestManager(t, nil)
	require.Equal(t, "", m.Report())
	require.Equal(t, "", m.Render("missing", "# "))
}

func TestReportChildOrderPreserved(t *testing.T) {
	a := domain.NewReflection("Root?", domain.LangEN)
	a.Answer = "root answer"
	first := child(a, "First child?")
	first.Answer = "one"
	second := child(a, "Second child?")
	second.Answer = "two"

	m := buildTree(t, a, first, second)
	report := m.Report()

	require.Less(t, strings.Index(report, "First child?"), strings.Index(report, "Second child?"))
}
