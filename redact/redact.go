/*
Package redact removes personally identifiable information from
free-form document text before it crosses any service boundary.

PURPOSE:
  Turns raw pasted text (W-2s, pay stubs, emails) into a redacted
  rendition where every detected PII value is replaced by a numbered
  category token like [SSN_1] or [EMAIL_2]. Only the redacted text and
  a token-to-category map leave this package; original values are never
  stored, logged, or returned.

KEY CONCEPTS:
  - RawText vs RedactedText: distinct string types. Anything that
    talks to an external service or the database accepts RedactedText
    only, so an unredacted value cannot slip through by accident.
  - Pattern precedence: regex matches (SSN, EIN, phone, email, bank,
    address, DOB) always win over recognizer entity matches when spans
    overlap. Structured identifiers are higher confidence than name
    guesses.
  - Idempotence: spans overlapping an existing [CATEGORY_n] token are
    dropped, so redacting already-redacted text is a no-op.
  - Counters: per category, starting at 1, assigned left to right so
    the same input always yields the same tokens.
  - Leakage check: the finished output is re-scanned with the same
    structured patterns; anything still matching raises a warning.

SEE ALSO:
  - recognizer.go: Dictionary-based name/employer detection
  - extract/: Sole consumer of RedactedText for external calls
*/
package redact

import (
	"fmt"
	"regexp"
	"sort"
)

// =============================================================================
// TYPES
// =============================================================================

// RawText is unredacted document text. Nothing outside this package
// should pass a RawText to storage or to an external service.
type RawText string

// RedactedText has been through Redact. Safe to persist and transmit.
type RedactedText string

// Category names a class of PII. Its string form is the token stem.
type Category string

const (
	CategorySSN      Category = "SSN"
	CategoryEIN      Category = "EIN"
	CategoryPhone    Category = "PHONE"
	CategoryEmail    Category = "EMAIL"
	CategoryBank     Category = "BANK_ACCOUNT"
	CategoryAddress  Category = "ADDRESS"
	CategoryDOB      Category = "DOB"
	CategoryName     Category = "USER_NAME"
	CategoryEmployer Category = "EMPLOYER"
)

// Result is everything Redact reports. TokenMap records which category
// each emitted token belongs to; it never contains original values.
type Result struct {
	Redacted RedactedText        `json:"redacted_text"`
	TokenMap map[string]Category `json:"token_map"`
	// PIITypes lists the categories found, in first-occurrence order.
	PIITypes []Category `json:"pii_types"`
	Count    int        `json:"redaction_count"`
	Warnings []string   `json:"warnings,omitempty"`
}

// Span is a half-open [Start, End) byte range tagged with a category.
type Span struct {
	Start    int
	End      int
	Category Category
}

// EntityRecognizer finds name-like and employer-like spans that regex
// patterns cannot. Implementations must not retain the text.
type EntityRecognizer interface {
	Recognize(text string) []Span
}

// =============================================================================
// PATTERNS
// =============================================================================

// patternSpec order matters: earlier entries claim overlapping text
// first, so the list runs from most to least specific.
type patternSpec struct {
	category Category
	re       *regexp.Regexp
}

var patterns = []patternSpec{
	{CategorySSN, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{CategorySSN, regexp.MustCompile(`\b\d{3}\s\d{2}\s\d{4}\b`)},
	{CategorySSN, regexp.MustCompile(`(?i)\b(?:ssn|social security)[:#\s]*\d{9}\b`)},
	{CategoryEIN, regexp.MustCompile(`\b\d{2}-\d{7}\b`)},
	{CategoryDOB, regexp.MustCompile(`(?i)\b(?:dob|date of birth|born)[:\s]+\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)},
	{CategoryBank, regexp.MustCompile(`(?i)\b(?:account|acct|routing)[.#:\s]*(?:number|no|num)?[.#:\s]*\d{6,17}\b`)},
	{CategoryPhone, regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`)},
	{CategoryEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{CategoryAddress, regexp.MustCompile(`(?i)\b\d{1,6}\s+(?:[A-Za-z0-9.]+\s){1,4}(?:street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|way|place|pl)\b\.?(?:\s*,?\s*(?:apt|unit|suite|ste|#)\s*\w+)?`)},
}

// tokenRe matches tokens this package has already emitted. Spans that
// overlap one are dropped, which makes Redact idempotent.
var tokenRe = regexp.MustCompile(`\[[A-Z_]+_\d+\]`)

// =============================================================================
// REDACTOR
// =============================================================================

// Redactor applies the regex patterns plus an optional recognizer.
type Redactor struct {
	recognizer EntityRecognizer
}

// New builds a Redactor. A nil recognizer is allowed: regex redaction
// still runs and the Result carries a warning about degraded coverage.
func New(recognizer EntityRecognizer) *Redactor {
	return &Redactor{recognizer: recognizer}
}

// Redact replaces every detected PII span with a numbered category
// token and reports what was found.
func (r *Redactor) Redact(raw RawText) Result {
	text := string(raw)
	out := Result{TokenMap: map[string]Category{}}

	var spans []Span
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			spans = append(spans, Span{Start: loc[0], End: loc[1], Category: p.category})
		}
	}
	// Regex spans claim their text in pattern order before any
	// recognizer span is considered.
	spans = dropOverlaps(spans)

	if r.recognizer != nil {
		var entities []Span
		for _, s := range r.recognizer.Recognize(text) {
			if !overlapsAny(s, spans) {
				entities = append(entities, s)
			}
		}
		spans = append(spans, dropOverlaps(entities)...)
	} else {
		out.Warnings = append(out.Warnings, "entity recognition unavailable, names and employers may not be redacted")
	}

	// Drop anything inside an already-emitted token.
	var existing []Span
	for _, loc := range tokenRe.FindAllStringIndex(text, -1) {
		existing = append(existing, Span{Start: loc[0], End: loc[1]})
	}
	kept := spans[:0]
	for _, s := range spans {
		if !overlapsAny(s, existing) {
			kept = append(kept, s)
		}
	}
	spans = kept

	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	counters := map[Category]int{}
	seen := map[Category]bool{}
	var buf []byte
	last := 0
	for _, s := range spans {
		counters[s.Category]++
		token := fmt.Sprintf("[%s_%d]", s.Category, counters[s.Category])
		buf = append(buf, text[last:s.Start]...)
		buf = append(buf, token...)
		last = s.End
		out.TokenMap[token] = s.Category
		if !seen[s.Category] {
			seen[s.Category] = true
			out.PIITypes = append(out.PIITypes, s.Category)
		}
		out.Count++
	}
	buf = append(buf, text[last:]...)
	out.Redacted = RedactedText(buf)

	// Second pass over the output. Substitution should leave nothing a
	// pattern can still match; if it did, say so rather than hand out
	// text believed clean.
	if n := residualMatches(string(out.Redacted)); n > 0 {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("%d possible identifier(s) remain after redaction, review before sharing", n))
	}
	return out
}

// residualMatches re-scans redacted text with every structured
// pattern and counts what still matches.
func residualMatches(text string) int {
	n := 0
	for _, p := range patterns {
		n += len(p.re.FindAllStringIndex(text, -1))
	}
	return n
}

// dropOverlaps keeps the earliest-listed span wherever two overlap.
// Input order encodes precedence.
func dropOverlaps(spans []Span) []Span {
	var kept []Span
	for _, s := range spans {
		if !overlapsAny(s, kept) {
			kept = append(kept, s)
		}
	}
	return kept
}

func overlapsAny(s Span, others []Span) bool {
	for _, o := range others {
		if s.Start < o.End && o.Start < s.End {
			return true
		}
	}
	return false
}
