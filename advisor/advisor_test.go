package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxguard/tax-engine/refdata"
)

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func baseSummary() Summary {
	return Summary{
		FilingStatus:  refdata.Single,
		GrossIncome:   dec("80000"),
		AGI:           dec("80000"),
		TaxableIncome: dec("65000"),
		TotalTax:      dec("9214"),
		RefundOrOwed:  dec("-214"),
		MarginalRate:  dec("0.22"),
		EffectiveRate: dec("0.1152"),
		Headroom401k:  dec("23500"),
		HeadroomHSA:   dec("4300"),
		HeadroomIRA:   dec("7000"),
	}
}

func TestRuleBased401kHeadroom(t *testing.T) {
	// GIVEN headroom at a 22% marginal rate
	recs, err := NewRuleBased().Recommend(context.Background(), baseSummary())
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	// THEN the 401(k) push is high priority with a savings estimate
	first := recs[0]
	assert.Equal(t, PriorityHigh, first.Priority)
	assert.Equal(t, "retirement", first.Category)
	assert.True(t, first.EstimatedSavings.Equal(dec("5170.00")), "22%% of 23,500: %s", first.EstimatedSavings)
}

func TestRuleBasedPriorityOrdering(t *testing.T) {
	s := baseSummary()
	s.RefundOrOwed = dec("-3000")
	s.SelfEmploymentIncome = dec("20000")

	recs, err := NewRuleBased().Recommend(context.Background(), s)
	require.NoError(t, err)

	for i := 1; i < len(recs); i++ {
		assert.LessOrEqual(t, recs[i-1].Priority, recs[i].Priority, "rec %d out of order", i)
	}
}

func TestRuleBasedOwedTriggersEstimatedPayments(t *testing.T) {
	s := baseSummary()
	s.RefundOrOwed = dec("-2500")

	recs, err := NewRuleBased().Recommend(context.Background(), s)
	require.NoError(t, err)

	found := false
	for _, r := range recs {
		if r.Category == "payments" {
			found = true
			assert.Equal(t, PriorityHigh, r.Priority)
			assert.Contains(t, r.Detail, "2500")
		}
	}
	assert.True(t, found, "expected an estimated payments recommendation")
}

func TestRuleBasedLargeRefundTriggersW4(t *testing.T) {
	s := baseSummary()
	s.RefundOrOwed = dec("6200")

	recs, err := NewRuleBased().Recommend(context.Background(), s)
	require.NoError(t, err)

	found := false
	for _, r := range recs {
		if r.Category == "withholding" {
			found = true
			assert.Equal(t, PriorityLow, r.Priority)
		}
	}
	assert.True(t, found, "expected a W-4 recommendation")
}

func TestRuleBasedIRARequiresNoWorkplacePlan(t *testing.T) {
	s := baseSummary()
	s.HasWorkplacePlan = true

	recs, err := NewRuleBased().Recommend(context.Background(), s)
	require.NoError(t, err)

	for _, r := range recs {
		assert.NotContains(t, r.Title, "IRA")
	}
}

func TestRuleBasedNeverEmpty(t *testing.T) {
	// GIVEN a summary where no rule fires
	s := Summary{
		FilingStatus:     refdata.Single,
		GrossIncome:      dec("60000"),
		TotalTax:         dec("5000"),
		RefundOrOwed:     dec("100"),
		HasWorkplacePlan: true,
	}

	recs, err := NewRuleBased().Recommend(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "general", recs[0].Category)
}

// stubChat returns a canned completion or error.
type stubChat struct {
	content string
	err     error
}

func (s *stubChat) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func aiAdvisor(content string, err error) *OpenAI {
	return &OpenAI{
		client:   &stubChat{content: content, err: err},
		model:    "test",
		fallback: NewRuleBased(),
	}
}

func TestOpenAIRecommendParsesReply(t *testing.T) {
	ad := aiAdvisor(`[{"priority":"high","category":"retirement","title":"Max the 401(k)","detail":"Fill the remaining headroom.","estimated_savings":5170}]`, nil)

	recs, err := ad.Recommend(context.Background(), baseSummary())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, PriorityHigh, recs[0].Priority)
	assert.Equal(t, "Max the 401(k)", recs[0].Title)
	assert.True(t, recs[0].EstimatedSavings.Equal(dec("5170")))
}

func TestOpenAIRecommendStripsCodeFence(t *testing.T) {
	ad := aiAdvisor("```json\n[{\"priority\":\"low\",\"title\":\"Check W-4\",\"detail\":\"d\"}]\n```", nil)

	recs, err := ad.Recommend(context.Background(), baseSummary())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, PriorityLow, recs[0].Priority)
}

// hungChat never answers until the context expires.
type hungChat struct{}

func (hungChat) CreateChatCompletion(ctx context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	<-ctx.Done()
	return openai.ChatCompletionResponse{}, ctx.Err()
}

func TestOpenAIHungServiceFallsBackAfterDeadline(t *testing.T) {
	// GIVEN a model backend that never responds
	var observed error
	ad := &OpenAI{
		client:     hungChat{},
		model:      "test",
		fallback:   NewRuleBased(),
		Timeout:    10 * time.Millisecond,
		OnFallback: func(err error) { observed = err },
	}

	// WHEN recommending with an undeadlined caller context
	done := make(chan struct{})
	var recs []Recommendation
	var err error
	go func() {
		recs, err = ad.Recommend(context.Background(), baseSummary())
		close(done)
	}()

	// THEN the deadline fires and the rule table answers
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Recommend did not return; deadline never fired")
	}
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.ErrorIs(t, observed, context.DeadlineExceeded)
}

func TestOpenAIFallsBackSilently(t *testing.T) {
	cases := []struct {
		name string
		stub *stubChat
	}{
		{"transport error", &stubChat{err: errors.New("connection refused")}},
		{"garbage reply", &stubChat{content: "I think you should save more."}},
		{"empty array", &stubChat{content: "[]"}},
		{"array of blanks", &stubChat{content: `[{"priority":"high"}]`}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var observed error
			ad := &OpenAI{
				client:     tc.stub,
				model:      "test",
				fallback:   NewRuleBased(),
				OnFallback: func(err error) { observed = err },
			}

			// WHEN the AI path fails
			recs, err := ad.Recommend(context.Background(), baseSummary())

			// THEN the caller still gets rule-based recommendations
			require.NoError(t, err)
			require.NotEmpty(t, recs)
			assert.Error(t, observed, "fallback cause should be observable")
		})
	}
}
