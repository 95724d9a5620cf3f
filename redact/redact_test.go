package redact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactSSN(t *testing.T) {
	// GIVEN text holding a dashed SSN
	r := New(nil)

	// WHEN redacted
	res := r.Redact("My SSN is 123-45-6789 thanks")

	// THEN the value is replaced by a numbered token and the map holds
	// only the token-to-category association
	assert.Equal(t, RedactedText("My SSN is [SSN_1] thanks"), res.Redacted)
	assert.Equal(t, Category("SSN"), res.TokenMap["[SSN_1]"])
	assert.Equal(t, 1, res.Count)
	for token := range res.TokenMap {
		assert.NotContains(t, token, "123-45-6789")
	}
}

func TestRedactCountersPerCategory(t *testing.T) {
	r := New(nil)
	res := r.Redact("SSNs 111-22-3333 and 444-55-6666, email a@b.com")

	redacted := string(res.Redacted)
	assert.Contains(t, redacted, "[SSN_1]")
	assert.Contains(t, redacted, "[SSN_2]")
	assert.Contains(t, redacted, "[EMAIL_1]")
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, []Category{CategorySSN, CategoryEmail}, res.PIITypes)
}

func TestRedactIdempotent(t *testing.T) {
	// GIVEN text already containing tokens alongside fresh PII
	r := New(NewDictionaryRecognizer())
	first := r.Redact("Employee: Jane Smith, SSN 123-45-6789, phone 555-123-4567")

	// WHEN the redacted output goes through again
	second := r.Redact(RawText(first.Redacted))

	// THEN nothing changes and nothing new is claimed
	assert.Equal(t, first.Redacted, second.Redacted)
	assert.Equal(t, 0, second.Count)
}

func TestRegexBeatsRecognizer(t *testing.T) {
	// An EIN sits inside text the recognizer could plausibly claim as
	// part of an employer span. The structured match must win.
	r := New(NewDictionaryRecognizer())
	res := r.Redact("Employer: Acme Widgets Inc, EIN 12-3456789")

	redacted := string(res.Redacted)
	assert.Contains(t, redacted, "[EIN_1]")
	assert.NotContains(t, redacted, "12-3456789")
}

func TestRedactCategories(t *testing.T) {
	r := New(NewDictionaryRecognizer())

	cases := []struct {
		name string
		in   string
		want Category
	}{
		{"spaced ssn", "num 123 45 6789 here", CategorySSN},
		{"ein", "EIN 12-3456789 on file", CategoryEIN},
		{"phone", "call (415) 555-1234 today", CategoryPhone},
		{"email", "send to pat.doe@example.org now", CategoryEmail},
		{"bank account", "Account Number: 12345678901", CategoryBank},
		{"routing", "routing 021000021 listed", CategoryBank},
		{"address", "lives at 42 Maple Street Apt 3", CategoryAddress},
		{"dob", "DOB: 04/12/1987 noted", CategoryDOB},
		{"honorific name", "prepared for Mr. John Carter", CategoryName},
		{"employer suffix", "works at Globex Corporation since 2020", CategoryEmployer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := r.Redact(RawText(tc.in))
			require.NotZero(t, res.Count, "nothing redacted in %q", tc.in)
			found := false
			for _, cat := range res.PIITypes {
				if cat == tc.want {
					found = true
				}
			}
			assert.True(t, found, "want %s in %v for %q -> %q", tc.want, res.PIITypes, tc.in, res.Redacted)
		})
	}
}

func TestInstitutionalPhrasesSurvive(t *testing.T) {
	r := New(NewDictionaryRecognizer())
	res := r.Redact("Social Security tax withheld, Federal Income tax, Internal Revenue Service notice")

	assert.Contains(t, string(res.Redacted), "Social Security")
	assert.Contains(t, string(res.Redacted), "Internal Revenue Service")
	assert.NotContains(t, string(res.Redacted), "[USER_NAME")
}

func TestNilRecognizerDegrades(t *testing.T) {
	// GIVEN no recognizer wired
	r := New(nil)

	// WHEN redacting text with both structured and name PII
	res := r.Redact("Jane Smith, SSN 123-45-6789")

	// THEN regex coverage still applies and a warning reports the gap
	assert.Contains(t, string(res.Redacted), "[SSN_1]")
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "entity recognition unavailable")
}

func TestRedactDeterministic(t *testing.T) {
	r := New(NewDictionaryRecognizer())
	in := RawText("Employee: Jane Smith, employer Initech LLC, email jane@initech.com, SSN 123-45-6789")

	a := r.Redact(in)
	b := r.Redact(in)
	assert.Equal(t, a.Redacted, b.Redacted)
	assert.Equal(t, a.TokenMap, b.TokenMap)
}

func TestRedactedOutputNeverCarriesOriginalValues(t *testing.T) {
	// Whatever mix of identifiers comes in, none of the raw values may
	// survive into the redacted output, and the leakage re-scan must
	// come back clean.
	r := New(NewDictionaryRecognizer())

	cases := []struct {
		name   string
		in     string
		values []string
	}{
		{"w2 block", "Employee: Jane Smith, SSN 123-45-6789, EIN 12-3456789",
			[]string{"123-45-6789", "12-3456789"}},
		{"contact lines", "reach me at jane.doe@example.com or (415) 555-1234",
			[]string{"jane.doe@example.com", "(415) 555-1234"}},
		{"bank and dob", "Account Number: 12345678901, DOB: 04/12/1987",
			[]string{"12345678901", "04/12/1987"}},
		{"adjacent identifiers", "SSN 123-45-6789 phone 555-123-4567 email a@b.co",
			[]string{"123-45-6789", "555-123-4567", "a@b.co"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := r.Redact(RawText(tc.in))
			for _, v := range tc.values {
				assert.NotContains(t, string(res.Redacted), v)
			}
			assert.Zero(t, residualMatches(string(res.Redacted)))
			for _, w := range res.Warnings {
				assert.NotContains(t, w, "remain after redaction")
			}
		})
	}
}

func TestResidualMatches(t *testing.T) {
	// GIVEN text where a structured identifier survived
	assert.Equal(t, 1, residualMatches("summary for [USER_NAME_1], SSN 123-45-6789"))

	// AND fully tokenized text is clean
	assert.Zero(t, residualMatches("summary for [USER_NAME_1], SSN [SSN_1]"))
}

func TestRedactNoPII(t *testing.T) {
	r := New(NewDictionaryRecognizer())
	res := r.Redact("gross pay this period was higher than the standard deduction")

	assert.Equal(t, 0, res.Count)
	assert.Empty(t, res.TokenMap)
	assert.False(t, strings.Contains(string(res.Redacted), "["))
}
