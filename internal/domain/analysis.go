package domain

// Belief is an assumption, blind spot or contradiction the Analysis Client
// inferred from an answer. Each belief becomes one child reflection seeded
// with its challenge question.
type Belief struct {
	Type              ReflectionType `json:"belief_type"`
	Statement         string         `json:"statement"`
	ChallengeQuestion string         `json:"challenge_question"`
}

// EntryAnalysis is the result of analyzing a single question/answer pair.
type EntryAnalysis struct {
	Themes    []string  `json:"themes"`
	Sentiment Sentiment `json:"sentiment"`
	Beliefs   []Belief  `json:"beliefs"`
}

// Importance rates an insight's tasks.
type Importance string

const (
	ImportanceHigh   Importance = "High"
	ImportanceMedium Importance = "Medium"
	ImportanceLow    Importance = "Low"
)

// ParseImportance validates an importance rating from the Analysis Client.
func ParseImportance(s string) (Importance, bool) {
	switch Importance(s) {
	case ImportanceHigh, ImportanceMedium, ImportanceLow:
		return Importance(s), true
	}
	return "", false
}

// Insight is one actionable takeaway from the report-level analysis. It is
// returned alongside the summary entry, not stored in the tree.
type Insight struct {
	Insight    string     `json:"insight"`
	Goal       string     `json:"goal"`
	Tasks      []string   `json:"tasks"`
	Themes     []string   `json:"themes"`
	Importance Importance `json:"importance"`
}

// ReportAnalysis is the result of analyzing a full rendered report.
type ReportAnalysis struct {
	MainQuestion  string    `json:"main_question"`
	AnswerSummary string    `json:"answer_summary"`
	Insights      []Insight `json:"insights"`
}
