package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTermScanner(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Term
	}{
		{"empty", "  ", nil},
		{"clean", "Lovely garden and attentive staff", nil},
		{
			name: "profanity is lowercased and deduplicated",
			text: "Shit service, utter SHIT",
			want: []Term{{Text: "shit", Kind: TermProfanity}},
		},
		{
			name: "url",
			text: "Cheaper at https://example.com/deal",
			want: []Term{{Text: "https://example.com/deal", Kind: TermURL}},
		},
		{
			name: "phone",
			text: "Call (555) 123-4567 for a refund",
			want: []Term{{Text: "(555) 123-4567", Kind: TermContactInfo}},
		},
		{
			name: "two caps runs are tolerated",
			text: "VERY NOISY evening",
		},
		{
			name: "three caps runs are flagged",
			text: "WORST PARTY VENUE ever",
			want: []Term{
				{Text: "WORST", Kind: TermExcessiveCaps},
				{Text: "PARTY", Kind: TermExcessiveCaps},
				{Text: "VENUE", Kind: TermExcessiveCaps},
			},
		},
	}

	s := NewTermScanner(FlaggedWords)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, s.Scan(tt.text))
		})
	}
}

func TestTermScannerIgnoresWordFragments(t *testing.T) {
	s := NewTermScanner([]string{"ass"})
	require.Empty(t, s.Scan("A classic brass band"))
	require.Equal(t, []string{"ass"}, TermTexts(s.Scan("what an ass")))
}
