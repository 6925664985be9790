package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdownNeutralizesFormattingCharacters(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Rent overdue: Unit 4B", "Rent overdue: Unit 4B"},
		{"underscores in tenant name", "maria_lopez is 12 days overdue", "maria\\_lopez is 12 days overdue"},
		{"asterisks", "Pay *now*", "Pay \\*now\\*"},
		{"backticks", "ref `INV-102`", "ref \\`INV-102\\`"},
		{"open bracket", "Unit [basement]", "Unit \\[basement]"},
		{"mixed", "a_b*c`d[e", "a\\_b\\*c\\`d\\[e"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, escapeMarkdown(tc.in))
		})
	}
}

func TestEscapeMarkdownIsIdempotentOnEscapedInput(t *testing.T) {
	once := escapeMarkdown("maria_lopez")
	assert.Equal(t, "maria\\_lopez", once)
	// Escaping again only escapes the underscore, not the backslash; the
	// caller must escape exactly once.
	assert.Equal(t, "maria\\\\_lopez", escapeMarkdown(once))
}
