package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/PabloGalante/reflexion-agent/internal/domain"
	"github.com/PabloGalante/reflexion-agent/internal/observability"
)

// GenAIClient implements domain.AnalysisClient on Vertex AI (Gemini) with
// structured JSON responses. Failures are logged and surfaced as nil results,
// never as errors: the caller treats a nil analysis as "retry later" and the
// node stays untouched.
type GenAIClient struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
}

// NewGenAIClient creates an analysis client against Vertex AI.
func NewGenAIClient(ctx context.Context, projectID, location, modelName string, timeout time.Duration) (*GenAIClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("project and location are required for the Vertex AI client")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &GenAIClient{
		client:    client,
		modelName: modelName,
		timeout:   timeout,
	}, nil
}

// ─────────────────────────────────────────
// Wire payloads and response schemas
// ─────────────────────────────────────────

type sentimentPayload struct {
	Sentiment string `json:"sentiment"`
}

type themesPayload struct {
	Themes []string `json:"themes"`
}

type beliefPayload struct {
	BeliefType        string `json:"belief_type"`
	Statement         string `json:"statement"`
	ChallengeQuestion string `json:"challenge_question"`
}

type beliefsPayload struct {
	Beliefs []beliefPayload `json:"beliefs"`
}

type insightPayload struct {
	Insight    string   `json:"insight"`
	Goal       string   `json:"goal"`
	Tasks      []string `json:"tasks"`
	Themes     []string `json:"themes"`
	Importance string   `json:"importance"`
}

type reportPayload struct {
	MainQuestion  string           `json:"main_question"`
	AnswerSummary string           `json:"answer_summary"`
	Insights      []insightPayload `json:"insights"`
}

func stringSchema(enum ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Enum: enum}
}

func stringListSchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

var sentimentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"sentiment": stringSchema(
			string(domain.SentimentPositive),
			string(domain.SentimentSlightlyPositive),
			string(domain.SentimentNeutral),
			string(domain.SentimentSlightlyNegative),
			string(domain.SentimentNegative),
		),
	},
	Required: []string{"sentiment"},
}

var themesSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"themes": stringListSchema(),
	},
	Required: []string{"themes"},
}

var beliefsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"beliefs": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"belief_type": stringSchema(
						string(domain.TypeAssumption),
						string(domain.TypeBlindSpot),
						string(domain.TypeContradiction),
					),
					"statement":          {Type: genai.TypeString},
					"challenge_question": {Type: genai.TypeString},
				},
				Required: []string{"belief_type", "statement", "challenge_question"},
			},
		},
	},
	Required: []string{"beliefs"},
}

var reportSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"main_question":  {Type: genai.TypeString},
		"answer_summary": {Type: genai.TypeString},
		"insights": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"insight": {Type: genai.TypeString},
					"goal":    {Type: genai.TypeString},
					"tasks":   stringListSchema(),
					"themes":  stringListSchema(),
					"importance": stringSchema(
						string(domain.ImportanceHigh),
						string(domain.ImportanceMedium),
						string(domain.ImportanceLow),
					),
				},
				Required: []string{"insight", "goal", "tasks", "themes", "importance"},
			},
		},
	},
	Required: []string{"main_question", "answer_summary", "insights"},
}

// generate runs one structured call and decodes the JSON reply into out.
func (c *GenAIClient) generate(ctx context.Context, instructions, content string, schema *genai.Schema, out any) error {
	temp := float32(0.0)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instructions, genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   int32(3000),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
	}

	contents := []*genai.Content{genai.NewContentFromText(content, genai.RoleUser)}

	res, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, cfg)
	if err != nil {
		return fmt.Errorf("vertex generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return fmt.Errorf("vertex returned empty text")
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decoding structured reply: %w", err)
	}
	return nil
}

// AnalyzeEntry runs the three independent sub-analyses (sentiment, themes,
// belief extraction) concurrently and joins them into one result before the
// caller mutates any node. Any sub-failure discards the whole analysis.
func (c *GenAIClient) AnalyzeEntry(ctx context.Context, question, answer string, lang domain.Language) *domain.EntryAnalysis {
	log := observability.LoggerFromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content := entryContent(question, answer)

	var (
		sentiment sentimentPayload
		themes    themesPayload
		beliefs   beliefsPayload
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	g.Go(func() error {
		return c.generate(gctx, withLanguage(sentimentInstructions, lang), content, sentimentSchema, &sentiment)
	})
	g.Go(func() error {
		return c.generate(gctx, withLanguage(themesInstructions, lang), content, themesSchema, &themes)
	})
	g.Go(func() error {
		return c.generate(gctx, withLanguage(beliefsInstructions, lang), content, beliefsSchema, &beliefs)
	})
	if err := g.Wait(); err != nil {
		log.Warn("entry analysis failed", "error", err)
		return nil
	}

	analysis, err := joinEntryAnalysis(sentiment, themes, beliefs)
	if err != nil {
		log.Warn("entry analysis rejected", "error", err)
		return nil
	}
	return analysis
}

// joinEntryAnalysis validates the wire payloads into domain values. A reply
// that breaks the enum contract poisons the entire analysis.
func joinEntryAnalysis(sp sentimentPayload, tp themesPayload, bp beliefsPayload) (*domain.EntryAnalysis, error) {
	sentiment, ok := domain.ParseSentiment(sp.Sentiment)
	if !ok {
		return nil, fmt.Errorf("unknown sentiment %q", sp.Sentiment)
	}
	if len(tp.Themes) == 0 {
		return nil, fmt.Errorf("no themes extracted")
	}

	analysis := &domain.EntryAnalysis{
		Themes:    tp.Themes,
		Sentiment: sentiment,
	}
	for _, b := range bp.Beliefs {
		beliefType, ok := domain.ParseBeliefType(b.BeliefType)
		if !ok {
			return nil, fmt.Errorf("unknown belief type %q", b.BeliefType)
		}
		if b.Statement == "" || b.ChallengeQuestion == "" {
			return nil, fmt.Errorf("incomplete belief")
		}
		analysis.Beliefs = append(analysis.Beliefs, domain.Belief{
			Type:              beliefType,
			Statement:         b.Statement,
			ChallengeQuestion: b.ChallengeQuestion,
		})
	}
	return analysis, nil
}

// AnalyzeReport runs the report-level analysis as one structured call.
func (c *GenAIClient) AnalyzeReport(ctx context.Context, report string, lang domain.Language) *domain.ReportAnalysis {
	log := observability.LoggerFromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var payload reportPayload
	if err := c.generate(ctx, withLanguage(reportInstructions, lang), report, reportSchema, &payload); err != nil {
		log.Warn("report analysis failed", "error", err)
		return nil
	}

	if payload.MainQuestion == "" || payload.AnswerSummary == "" {
		log.Warn("report analysis rejected", "error", "empty main question or summary")
		return nil
	}

	analysis := &domain.ReportAnalysis{
		MainQuestion:  payload.MainQuestion,
		AnswerSummary: payload.AnswerSummary,
	}
	for _, in := range payload.Insights {
		importance, ok := domain.ParseImportance(in.Importance)
		if !ok {
			log.Warn("report analysis rejected", "error", fmt.Sprintf("unknown importance %q", in.Importance))
			return nil
		}
		analysis.Insights = append(analysis.Insights, domain.Insight{
			Insight:    in.Insight,
			Goal:       in.Goal,
			Tasks:      in.Tasks,
			Themes:     in.Themes,
			Importance: importance,
		})
	}
	return analysis
}
