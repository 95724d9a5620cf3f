/*
openai.go - AI-backed field extraction

PURPOSE:
  Sends redacted document text to a chat completion model with a
  strict JSON-only instruction and decodes the reply into Fields.
  Anything the model returns that does not conform to the schema is
  treated as no extraction at all: unknown keys, invalid enum values,
  or non-JSON replies all yield ErrNoExtraction rather than a partial
  guess.

PII POSTURE:
  The request body contains RedactedText only. The prompt never asks
  the model to echo identities, and replies are shape-checked before
  any value is trusted.

SEE ALSO:
  - extract.go: Fallback wiring when this backend fails
*/
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"

	"github.com/taxguard/tax-engine/redact"
	"github.com/taxguard/tax-engine/refdata"
)

const extractSystemPrompt = `You extract payroll and tax figures from redacted document text.
Respond with a single JSON object and nothing else. Allowed keys:
  filing_status: one of "single", "married_joint", "married_separate", "head_of_household"
  pay_frequency: one of "weekly", "biweekly", "semimonthly", "monthly", "quarterly", "annually"
  income_ytd, withholding_ytd, contribution_401k_ytd, contribution_hsa_ytd,
  self_employment_ytd, estimated_payments_ytd: numbers in dollars
Omit any key you cannot determine from the text. Never invent values.
The text contains [CATEGORY_n] placeholders; ignore them.`

// chatClient is the slice of the OpenAI client this package uses.
// Narrowed for test doubles.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// defaultAITimeout bounds a single completion call. A hung service
// must surface as an error so the Fallback chain can take over.
const defaultAITimeout = 30 * time.Second

// OpenAI extracts fields through a chat completion model.
type OpenAI struct {
	client chatClient
	model  string

	// Timeout is the per-call deadline. Zero disables it.
	Timeout time.Duration
}

// NewOpenAI builds the AI extractor. Model defaults to gpt-4o-mini
// when empty.
func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{
		client:  openai.NewClient(apiKey),
		model:   model,
		Timeout: defaultAITimeout,
	}
}

// wireFields mirrors Fields with loose wire types. DisallowUnknownFields
// on the decoder rejects any key outside this set.
type wireFields struct {
	FilingStatus         *string  `json:"filing_status"`
	PayFrequency         *string  `json:"pay_frequency"`
	IncomeYTD            *float64 `json:"income_ytd"`
	WithholdingYTD       *float64 `json:"withholding_ytd"`
	Contribution401kYTD  *float64 `json:"contribution_401k_ytd"`
	ContributionHSAYTD   *float64 `json:"contribution_hsa_ytd"`
	SelfEmploymentYTD    *float64 `json:"self_employment_ytd"`
	EstimatedPaymentsYTD *float64 `json:"estimated_payments_ytd"`
}

// Extract sends the redacted text to the model and shape-checks the
// reply. Transport failures wrap ErrExternalService; a reply that is
// not valid schema-conforming JSON yields ErrNoExtraction.
func (o *OpenAI) Extract(ctx context.Context, text redact.RedactedText) (*Fields, error) {
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(text)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrExternalService)
	}

	return parseWire(resp.Choices[0].Message.Content)
}

func parseWire(content string) (*Fields, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()
	var w wireFields
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoExtraction, err)
	}

	fields := &Fields{}
	if w.FilingStatus != nil {
		status := refdata.FilingStatus(*w.FilingStatus)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: invalid filing_status %q", ErrNoExtraction, *w.FilingStatus)
		}
		fields.FilingStatus = &status
	}
	if w.PayFrequency != nil {
		freq := refdata.PayFrequency(*w.PayFrequency)
		if !freq.Valid() {
			return nil, fmt.Errorf("%w: invalid pay_frequency %q", ErrNoExtraction, *w.PayFrequency)
		}
		fields.PayFrequency = &freq
	}
	for _, amt := range []struct {
		src *float64
		dst **decimal.Decimal
	}{
		{w.IncomeYTD, &fields.IncomeYTD},
		{w.WithholdingYTD, &fields.WithholdingYTD},
		{w.Contribution401kYTD, &fields.Contribution401kYTD},
		{w.ContributionHSAYTD, &fields.ContributionHSAYTD},
		{w.SelfEmploymentYTD, &fields.SelfEmploymentYTD},
		{w.EstimatedPaymentsYTD, &fields.EstimatedPaymentsYTD},
	} {
		if amt.src == nil {
			continue
		}
		if *amt.src < 0 {
			return nil, fmt.Errorf("%w: negative amount", ErrNoExtraction)
		}
		v := decimal.NewFromFloat(*amt.src)
		*amt.dst = &v
	}

	if fields.Empty() {
		return nil, fmt.Errorf("%w: reply held no usable fields", ErrNoExtraction)
	}
	return fields, nil
}
