package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReflectionID identifies a single reflection node.
type ReflectionID string

// SubjectID identifies the owner of one reflection tree (a user or a
// journaling session). Two subjects never share nodes or ids.
type SubjectID string

// Language selects the language the analysis prompts are written in.
type Language string

const (
	LangEN Language = "en"
	LangES Language = "es"
	LangCZ Language = "cz"
)

// ParseLanguage validates a language tag coming from config or storage.
func ParseLanguage(s string) (Language, bool) {
	switch Language(s) {
	case LangEN, LangES, LangCZ:
		return Language(s), true
	}
	return "", false
}

// Sentiment is the analyzed emotional tone of an answer.
type Sentiment string

const (
	SentimentPositive         Sentiment = "Positive"
	SentimentSlightlyPositive Sentiment = "Slightly Positive"
	SentimentNeutral          Sentiment = "Neutral"
	SentimentSlightlyNegative Sentiment = "Slightly Negative"
	SentimentNegative         Sentiment = "Negative"
)

// ParseSentiment validates a sentiment string at the Analysis Client boundary.
func ParseSentiment(s string) (Sentiment, bool) {
	switch Sentiment(s) {
	case SentimentPositive, SentimentSlightlyPositive, SentimentNeutral,
		SentimentSlightlyNegative, SentimentNegative:
		return Sentiment(s), true
	}
	return "", false
}

// ReflectionType tags how a node came to exist: the root of a tree is
// Original, children generated from extracted beliefs carry the belief's
// type, and the synthetic node produced by the journal summary is Summary.
type ReflectionType string

const (
	TypeOriginal      ReflectionType = "Original"
	TypeSummary       ReflectionType = "Summary"
	TypeAssumption    ReflectionType = "Assumption"
	TypeBlindSpot     ReflectionType = "Blind Spot"
	TypeContradiction ReflectionType = "Contradiction"
)

// ParseBeliefType validates a belief type returned by the Analysis Client.
// Only the three belief kinds are accepted here; Original and Summary are
// never produced by analysis.
func ParseBeliefType(s string) (ReflectionType, bool) {
	switch ReflectionType(s) {
	case TypeAssumption, TypeBlindSpot, TypeContradiction:
		return ReflectionType(s), true
	}
	return "", false
}

// Reflection is one question/answer pair plus its analysis and its position
// in the tree. An empty Answer means the node is still unanswered; analysis
// never runs on it and it never grows children.
type Reflection struct {
	ID        ReflectionID `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Language  Language     `json:"language"`

	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`

	// Analysis results. Themes doubles as the "already analyzed" marker.
	Themes    []string  `json:"themes,omitempty"`
	Sentiment Sentiment `json:"sentiment"`

	// For generated children, Context holds the belief statement that
	// spawned this node and Type its belief kind.
	Type    ReflectionType `json:"type"`
	Context string         `json:"context,omitempty"`

	// Tree structure. ParentID and ChildrenIDs are kept bidirectionally
	// consistent by the tree manager.
	ParentID    ReflectionID   `json:"parent_id,omitempty"`
	ChildrenIDs []ReflectionID `json:"children_ids,omitempty"`
}

// NewReflection creates an unanswered root-candidate node.
func NewReflection(question string, lang Language) *Reflection {
	return &Reflection{
		ID:        ReflectionID(uuid.NewString()),
		CreatedAt: time.Now(),
		Language:  lang,
		Question:  question,
		Sentiment: SentimentNeutral,
		Type:      TypeOriginal,
	}
}

// Answered reports whether the node has a non-empty answer.
func (r *Reflection) Answered() bool {
	return r.Answer != ""
}

// Analyzed reports whether analysis has populated this node.
func (r *Reflection) Analyzed() bool {
	return len(r.Themes) > 0
}

// Clone returns a deep copy, so stores can hand out snapshots without
// aliasing the manager's live nodes.
func (r *Reflection) Clone() *Reflection {
	c := *r
	if r.Themes != nil {
		c.Themes = append([]string(nil), r.Themes...)
	}
	if r.ChildrenIDs != nil {
		c.ChildrenIDs = append([]ReflectionID(nil), r.ChildrenIDs...)
	}
	return &c
}
