/*
rules.go - Regex field extraction

PURPOSE:
  Pulls labeled dollar amounts and keywords out of pay-stub style
  text. Works offline, deterministic, and doubles as the fallback
  backend when the AI extractor is unavailable or returns garbage.

MATCHING:
  Each field has an ordered list of label patterns; the first match
  wins. Amounts accept $ signs, thousands separators, and decimals.

SEE ALSO:
  - extract.go: The Extractor interface and Fields model
*/
package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/taxguard/tax-engine/redact"
	"github.com/taxguard/tax-engine/refdata"
)

// RuleBased extracts fields with label regexes. Stateless.
type RuleBased struct{}

func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

const amountPat = `\$?\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`

func labeled(labels string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + labels + `)\b[^$0-9\n]{0,25}` + amountPat)
}

var amountFields = []struct {
	re     *regexp.Regexp
	assign func(f *Fields, v decimal.Decimal)
}{
	{labeled(`gross pay ytd|ytd gross|gross ytd|gross earnings ytd|total gross|wages ytd|box 1`),
		func(f *Fields, v decimal.Decimal) { f.IncomeYTD = &v }},
	{labeled(`federal income tax ytd|fed tax ytd|federal withholding|fed withholding|withholding ytd|box 2`),
		func(f *Fields, v decimal.Decimal) { f.WithholdingYTD = &v }},
	{labeled(`401\(?k\)? ytd|401\(?k\)? contributions?|retirement ytd|elective deferral`),
		func(f *Fields, v decimal.Decimal) { f.Contribution401kYTD = &v }},
	{labeled(`hsa ytd|hsa contributions?|health savings`),
		func(f *Fields, v decimal.Decimal) { f.ContributionHSAYTD = &v }},
	{labeled(`1099 income|self.?employment income|freelance income|contract income|net business income`),
		func(f *Fields, v decimal.Decimal) { f.SelfEmploymentYTD = &v }},
	{labeled(`estimated payments?|quarterly payments?`),
		func(f *Fields, v decimal.Decimal) { f.EstimatedPaymentsYTD = &v }},
}

var filingKeywords = []struct {
	pat    *regexp.Regexp
	status refdata.FilingStatus
}{
	{regexp.MustCompile(`(?i)\bmarried filing jointly\b|\bmfj\b`), refdata.MarriedJoint},
	{regexp.MustCompile(`(?i)\bmarried filing separately\b|\bmfs\b`), refdata.MarriedSeparate},
	{regexp.MustCompile(`(?i)\bhead of household\b|\bhoh\b`), refdata.HeadOfHousehold},
	{regexp.MustCompile(`(?i)\bfiling status\b[^\n]{0,15}\bsingle\b|\bsingle filer\b`), refdata.Single},
}

var frequencyKeywords = []struct {
	pat  *regexp.Regexp
	freq refdata.PayFrequency
}{
	{regexp.MustCompile(`(?i)\bbi-?weekly\b|\bevery (?:two|2) weeks\b`), refdata.Biweekly},
	{regexp.MustCompile(`(?i)\bsemi-?monthly\b|\btwice a month\b`), refdata.Semimonthly},
	{regexp.MustCompile(`(?i)\bweekly\b`), refdata.Weekly},
	{regexp.MustCompile(`(?i)\bmonthly\b`), refdata.Monthly},
	{regexp.MustCompile(`(?i)\bquarterly\b`), refdata.Quarterly},
	{regexp.MustCompile(`(?i)\bannual(?:ly)?\b`), refdata.Annually},
}

// Extract scans the text against the rule tables. Returns
// ErrNoExtraction when nothing matched.
func (RuleBased) Extract(_ context.Context, text redact.RedactedText) (*Fields, error) {
	s := string(text)
	fields := &Fields{}

	for _, af := range amountFields {
		m := af.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		v, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			continue
		}
		af.assign(fields, v)
	}

	for _, fk := range filingKeywords {
		if fk.pat.MatchString(s) {
			status := fk.status
			fields.FilingStatus = &status
			break
		}
	}
	for _, fq := range frequencyKeywords {
		if fq.pat.MatchString(s) {
			freq := fq.freq
			fields.PayFrequency = &freq
			break
		}
	}

	if fields.Empty() {
		return nil, ErrNoExtraction
	}
	return fields, nil
}
