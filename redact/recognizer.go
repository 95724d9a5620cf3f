/*
recognizer.go - Dictionary-based name and employer detection

PURPOSE:
  Finds person names and employer names that have no structural shape
  a regex can pin down. Uses labeled contexts (Employee:, Name:),
  honorific prefixes (Mr., Ms.), capitalized word pairs, and corporate
  suffixes (Inc, LLC, Corp). A skip list keeps institutional phrases
  like "Social Security" and "Internal Revenue Service" out of the
  redaction set, since those are tax vocabulary, not PII.

SEE ALSO:
  - redact.go: Feeds recognizer spans in after regex spans
*/
package redact

import (
	"regexp"
	"strings"
)

// DictionaryRecognizer is the default EntityRecognizer. Heuristic but
// deterministic: same text always yields the same spans.
type DictionaryRecognizer struct{}

// NewDictionaryRecognizer returns the built-in recognizer.
func NewDictionaryRecognizer() *DictionaryRecognizer {
	return &DictionaryRecognizer{}
}

var (
	labeledNameRe = regexp.MustCompile(`(?i)\b(?:employee|name|taxpayer|spouse|recipient)\s*[:#]\s*([A-Z][a-z]+(?:\s[A-Z]\.?)?(?:\s[A-Z][a-z]+)+)`)
	honorificRe   = regexp.MustCompile(`\b(?:Mr|Mrs|Ms|Dr|Prof)\.?\s+([A-Z][a-z]+(?:\s[A-Z][a-z]+)*)`)
	capPairRe     = regexp.MustCompile(`\b([A-Z][a-z]+\s[A-Z][a-z]+)\b`)
	employerRe    = regexp.MustCompile(`\b([A-Z][A-Za-z&.\s]{1,40}?(?:Inc|LLC|Corp|Corporation|Company|Co|Ltd|LLP|Group|Partners|Enterprises|Industries|Technologies|Solutions)\b\.?)`)
	labeledOrgRe  = regexp.MustCompile(`(?i)\b(?:employer|company|organization)\s*[:#]\s*([A-Z][A-Za-z&.,'\s]{1,40})`)
)

// institutional phrases that look like names but are tax vocabulary.
var skipPhrases = []string{
	"social security",
	"internal revenue",
	"internal revenue service",
	"medicare",
	"federal income",
	"state income",
	"income tax",
	"head of household",
	"married filing",
	"gross pay",
	"net pay",
	"pay period",
	"pay frequency",
	"withholding",
	"filing status",
	"estimated payment",
	"quarterly payment",
	"year to date",
	"taxable income",
	"standard deduction",
	"box",
	"form w",
	"united states",
	"department of",
	"state of",
	"treasury",
}

func skippable(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, phrase := range skipPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Recognize returns employer spans first so company names beat the
// generic capitalized-pair heuristic where they overlap.
func (DictionaryRecognizer) Recognize(text string) []Span {
	var spans []Span

	collect := func(re *regexp.Regexp, cat Category, group int) {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[2*group], m[2*group+1]
			if start < 0 || skippable(text[start:end]) {
				continue
			}
			spans = append(spans, Span{Start: start, End: end, Category: cat})
		}
	}

	collect(employerRe, CategoryEmployer, 1)
	collect(labeledOrgRe, CategoryEmployer, 1)
	collect(labeledNameRe, CategoryName, 1)
	collect(honorificRe, CategoryName, 1)
	collect(capPairRe, CategoryName, 1)
	return spans
}
