package reflection

import (
	"fmt"
	"strings"

	"github.com/PabloGalante/reflexion-agent/internal/domain"
)

const rootPrefix = "# "

// Trees are shallow (belief count times a few answering rounds), so plain
// recursion is fine; the ceiling only guards against a corrupted tree with a
// parent/child cycle.
const maxReportDepth = 64

// Render builds the Markdown-like report for one subtree: a heading line
// with the question, the belief context when present, the answer body, then
// each child one heading level deeper. An absent or unanswered node renders
// as the empty string — recursion stops there, so its descendants are not
// reachable through this call.
func (m *Manager) Render(id domain.ReflectionID, prefix string) string {
	if len(prefix) > maxReportDepth {
		return ""
	}
	node := m.Get(id)
	if node == nil || !node.Answered() {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s\n\n", prefix, node.Question)
	if node.Context != "" {
		fmt.Fprintf(&b, "**%s**: %s\n\n", node.Type, node.Context)
	}
	fmt.Fprintf(&b, "%s\n\n", node.Answer)

	for _, child := range m.Children(id) {
		b.WriteString(m.Render(child.ID, "#"+prefix))
	}
	return b.String()
}

// Report renders the whole tree from the original entry, or returns the
// empty string when no root exists.
func (m *Manager) Report() string {
	if m.rootID == "" {
		return ""
	}
	return m.Render(m.rootID, rootPrefix)
}
