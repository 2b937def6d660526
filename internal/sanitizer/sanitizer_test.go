package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_Rules(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "plain prose untouched", input: "Take rest and fluids.", expected: "Take rest and fluids."},
		{name: "bold and italic", input: "Use **ibuprofen** or *paracetamol*.", expected: "Use ibuprofen or paracetamol."},
		{name: "triple emphasis", input: "***urgent***", expected: "urgent"},
		{name: "headings", input: "## Summary\nPatient is stable.", expected: "Summary\nPatient is stable."},
		{name: "deep heading", input: "###### Notes", expected: "Notes"},
		{name: "dash bullets", input: "Options:\n- rest\n- fluids", expected: "Options:\nrest\nfluids"},
		{name: "dot bullets", input: "Options:\n• rest\n  • fluids", expected: "Options:\nrest\nfluids"},
		{name: "leading bullet", input: "- first\n- second", expected: "first\nsecond"},
		{name: "numbered list", input: "Steps:\n1. call\n2. visit\n10. rest", expected: "Steps:\ncall\nvisit\nrest"},
		{name: "leading numbered item", input: "1. call the clinic", expected: "call the clinic"},
		{name: "number then bullet", input: "Plan\n1. - hydrate", expected: "Plan\nhydrate"},
		{name: "surrounding whitespace", input: "\n\n  Consult a neurologist.  \n", expected: "Consult a neurologist."},
		{
			name:     "mixed markdown",
			input:    "### Suggestion\n**Headache**:\n- *Paracetamol* 500mg\n1. See a **neurologist**",
			expected: "Suggestion\nHeadache:\nParacetamol 500mg\nSee a neurologist",
		},
		{name: "decimals inside a line survive", input: "Dose 2.5 mg twice daily", expected: "Dose 2.5 mg twice daily"},
		{name: "hyphenated words survive", input: "follow-up in two weeks", expected: "follow-up in two weeks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"\n- \n- x",
		"\n1. - x",
		"- - - nested",
		"1. 2. 3. numbers",
		"**#** mixed *#* markers",
		"text\n\n\n-\n\n•\n\n1.\n",
		"  ## Heading **bold**\n  - item one\n  2. item two\n",
		"#*-•1.",
	}

	for _, input := range inputs {
		once := Sanitize(input)
		assert.Equal(t, once, Sanitize(once), "input %q", input)
	}
}

func TestSanitize_NeverGrows(t *testing.T) {
	inputs := []string{
		"# Title\n- a\n- b\n1. c",
		"no markers at all",
		"   padded   ",
		"• • •",
	}

	for _, input := range inputs {
		assert.LessOrEqual(t, len(Sanitize(input)), len(input), "input %q", input)
	}
}

func TestRules_OnlyDelete(t *testing.T) {
	sample := "## H\n**b** *i*\n - bullet\n • dot\n 3. num"
	for _, rule := range Rules {
		out := rule.Pattern.ReplaceAllString(sample, rule.Replacement)
		assert.LessOrEqual(t, len(out), len(sample), "rule %s", rule.Name)
	}
}
