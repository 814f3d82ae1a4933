package agent

import (
	"context"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/talentsift/talentsift/internal/config"
	sifterr "github.com/talentsift/talentsift/internal/errors"
)

// Extractor turns a free-text query into a MissionSpec.
type Extractor interface {
	Extract(ctx context.Context, query string) (*MissionSpec, error)
}

const intentSystemPrompt = `You are a recruitment query analyst. Parse the recruiter's search query or job description into structured requirements.

Extract:
1. must_have: skills, technologies, or qualifications explicitly required. Normalize technology names ("React.js" -> "react", "Node" -> "nodejs").
2. nice_to_have: skills mentioned as preferred, bonus, or optional.
3. negative_constraints: technologies, roles, or domains explicitly excluded (look for "not", "except", "excluding", "no").
4. min_years: minimum years of experience if mentioned (the number only).
5. location: preferred location if mentioned.
6. core_domain: the primary domain of the role if identifiable (e.g. "backend", "data engineering").
7. clarifications: anything ambiguous or missing the recruiter might want to specify. Keep these concise.

Rules:
- Extract actual skill names, not generic descriptions.
- Normalize common aliases: "JS" -> "javascript", "ML" -> "machine learning", "k8s" -> "kubernetes".
- If the query is just a list of skills, put them all in must_have.
- Keep everything lowercase.

Respond with a JSON object only, matching this schema exactly:
{"must_have": [], "nice_to_have": [], "negative_constraints": [], "min_years": null, "location": null, "core_domain": null, "clarifications": []}`

// OpenAIExtractor extracts MissionSpecs with a chat-completion model.
// A malformed response is retried once; callers fall back to
// HeuristicMission when extraction fails outright.
type OpenAIExtractor struct {
	client  openai.Client
	model   openai.ChatModel
	timeout time.Duration
}

var _ Extractor = (*OpenAIExtractor)(nil)

// NewOpenAIExtractor builds an extractor from intent configuration.
func NewOpenAIExtractor(cfg config.IntentConfig) *OpenAIExtractor {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIExtractor{
		client:  openai.NewClient(opts...),
		model:   openai.ChatModel(cfg.Model),
		timeout: cfg.Timeout,
	}
}

// Extract calls the model and parses its JSON reply. A reply that is
// not valid mission JSON triggers exactly one retry.
func (x *OpenAIExtractor) Extract(ctx context.Context, query string) (*MissionSpec, error) {
	if x.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		content, err := x.complete(ctx, query)
		if err != nil {
			return nil, err
		}
		spec, err := ParseMissionJSON([]byte(StripCodeFence(content)), query)
		if err == nil {
			return spec, nil
		}
		lastErr = err
	}
	return nil, sifterr.New(sifterr.ErrCodeIntentFailed, "model returned unparseable mission JSON", lastErr)
}

func (x *OpenAIExtractor) complete(ctx context.Context, query string) (string, error) {
	completion, err := x.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: x.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(intentSystemPrompt),
			openai.UserMessage("Parse this recruitment query:\n\n" + query),
		},
		Temperature: param.NewOpt(0.0),
	})
	if err != nil {
		return "", sifterr.New(sifterr.ErrCodeIntentFailed, "intent extraction call failed", err)
	}
	if len(completion.Choices) == 0 {
		return "", sifterr.New(sifterr.ErrCodeIntentFailed, "model returned no choices", nil)
	}
	return completion.Choices[0].Message.Content, nil
}

// StripCodeFence unwraps a markdown-fenced JSON block if present.
func StripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if idx := strings.Index(content, "```json"); idx >= 0 {
		content = content[idx+len("```json"):]
	} else if idx := strings.Index(content, "```"); idx >= 0 {
		content = content[idx+len("```"):]
	} else {
		return content
	}
	if end := strings.Index(content, "```"); end >= 0 {
		content = content[:end]
	}
	return strings.TrimSpace(content)
}

// HeuristicExtractor is the no-LLM Extractor, for offline use.
type HeuristicExtractor struct{}

var _ Extractor = (*HeuristicExtractor)(nil)

func (HeuristicExtractor) Extract(ctx context.Context, query string) (*MissionSpec, error) {
	return HeuristicMission(query), nil
}
