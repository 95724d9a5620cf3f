/*
openai.go - AI advisor with rule fallback

PURPOSE:
  Asks a chat completion model for planning suggestions grounded in
  the Summary numbers, then parses the reply into Recommendations.
  Any failure along the way, transport, empty reply, unparseable
  content, falls back to the rule table without surfacing an error.
  Callers cannot tell which backend answered, only the logs can.

SEE ALSO:
  - rules.go: The fallback backend
*/
package advisor

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
)

const adviseSystemPrompt = `You are a tax planning assistant. Given a numeric summary of a
federal liability projection, reply with a JSON array of suggestions:
  [{"priority":"high|medium|low","category":"...","title":"...","detail":"...","estimated_savings":0}]
Suggestions must follow only from the numbers given. No more than five.
Do not ask for or reference any personal information.`

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// defaultAITimeout bounds a single completion call. A hung service
// has to become an error so the rule fallback can answer instead.
const defaultAITimeout = 30 * time.Second

// OpenAI is the AI advisor. Fallback is consulted whenever the model
// path fails; OnFallback, when set, observes the triggering error.
type OpenAI struct {
	client   chatClient
	model    string
	fallback Advisor

	// Timeout is the per-call deadline. Zero disables it.
	Timeout    time.Duration
	OnFallback func(err error)
}

// NewOpenAI builds the AI advisor around the rule table.
func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{
		client:   openai.NewClient(apiKey),
		model:    model,
		fallback: NewRuleBased(),
		Timeout:  defaultAITimeout,
	}
}

type wireRec struct {
	Priority         string  `json:"priority"`
	Category         string  `json:"category"`
	Title            string  `json:"title"`
	Detail           string  `json:"detail"`
	EstimatedSavings float64 `json:"estimated_savings"`
}

// Recommend asks the model and falls back to rules on any failure.
func (o *OpenAI) Recommend(ctx context.Context, s Summary) ([]Recommendation, error) {
	recs, err := o.recommendAI(ctx, s)
	if err != nil {
		if o.OnFallback != nil {
			o.OnFallback(err)
		}
		return o.fallback.Recommend(ctx, s)
	}
	return recs, nil
}

func (o *OpenAI) recommendAI(ctx context.Context, s Summary) ([]Recommendation, error) {
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: adviseSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errEmptyReply
	}
	return parseRecs(resp.Choices[0].Message.Content)
}

var errEmptyReply = jsonError("empty completion")

type jsonError string

func (e jsonError) Error() string { return string(e) }

func parseRecs(content string) ([]Recommendation, error) {
	// Models sometimes wrap JSON in a code fence; strip it.
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var wire []wireRec
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &wire); err != nil {
		return nil, err
	}
	if len(wire) == 0 {
		return nil, errEmptyReply
	}

	recs := make([]Recommendation, 0, len(wire))
	for _, w := range wire {
		if w.Title == "" {
			continue
		}
		prio := PriorityMedium
		switch strings.ToLower(w.Priority) {
		case "high":
			prio = PriorityHigh
		case "low":
			prio = PriorityLow
		}
		recs = append(recs, Recommendation{
			Priority:         prio,
			Category:         w.Category,
			Title:            w.Title,
			Detail:           w.Detail,
			EstimatedSavings: decimal.NewFromFloat(w.EstimatedSavings).Round(2),
		})
	}
	if len(recs) == 0 {
		return nil, errEmptyReply
	}
	return recs, nil
}
