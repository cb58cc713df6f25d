package moderation

import (
	"regexp"
	"strings"
)

// FlaggedWords are terms that draw a moderator's attention in review text.
var FlaggedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"ass", "asshole", "bastard", "bitch", "cunt",
	"retard", "retarded",
	"porn", "porno", "nude", "nudes",
	"spam", "scam", "scammer", "phishing", "malware",
}

type TermKind string

const (
	TermProfanity     TermKind = "inappropriate_language"
	TermURL           TermKind = "url"
	TermContactInfo   TermKind = "contact_info"
	TermRepeatedChars TermKind = "spam_pattern"
	TermExcessiveCaps TermKind = "excessive_caps"
)

type Term struct {
	Text string   `json:"text"`
	Kind TermKind `json:"kind"`
}

// TermScanner finds suspicious terms in free text. It is safe for
// concurrent use once built.
type TermScanner struct {
	words         []*regexp.Regexp
	urlPattern    *regexp.Regexp
	emailPattern  *regexp.Regexp
	phonePattern  *regexp.Regexp
	repeatPattern *regexp.Regexp
	capsPattern   *regexp.Regexp
}

var defaultScanner = NewTermScanner(FlaggedWords)

func NewTermScanner(words []string) *TermScanner {
	s := &TermScanner{
		words:         make([]*regexp.Regexp, 0, len(words)),
		urlPattern:    regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		emailPattern:  regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
		phonePattern:  regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
		repeatPattern: regexp.MustCompile(`(?i)(a{4,}|b{4,}|c{4,}|d{4,}|e{4,}|f{4,}|g{4,}|h{4,}|i{4,}|j{4,}|k{4,}|l{4,}|m{4,}|n{4,}|o{4,}|p{4,}|q{4,}|r{4,}|s{4,}|t{4,}|u{4,}|v{4,}|w{4,}|x{4,}|y{4,}|z{4,}|!{4,}|\?{4,}|\.{4,})`),
		capsPattern:   regexp.MustCompile(`\b[A-Z]{5,}\b`),
	}
	for _, w := range words {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
		if err == nil {
			s.words = append(s.words, re)
		}
	}
	return s
}

// Scan returns the distinct suspicious terms in text, in detection order.
// Caps runs are only reported when there are more than two of them.
func (s *TermScanner) Scan(text string) []Term {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var terms []Term
	seen := make(map[Term]bool)
	add := func(kind TermKind, matches []string) {
		for _, m := range matches {
			t := Term{Text: m, Kind: kind}
			if kind == TermProfanity {
				t.Text = strings.ToLower(m)
			}
			if !seen[t] {
				seen[t] = true
				terms = append(terms, t)
			}
		}
	}

	for _, re := range s.words {
		add(TermProfanity, re.FindAllString(text, -1))
	}
	add(TermURL, s.urlPattern.FindAllString(text, -1))
	add(TermContactInfo, s.emailPattern.FindAllString(text, -1))
	add(TermContactInfo, s.phonePattern.FindAllString(text, -1))
	add(TermRepeatedChars, s.repeatPattern.FindAllString(text, -1))
	if caps := s.capsPattern.FindAllString(text, -1); len(caps) > 2 {
		add(TermExcessiveCaps, caps)
	}
	return terms
}

// TermTexts flattens terms to their matched text.
func TermTexts(terms []Term) []string {
	if len(terms) == 0 {
		return nil
	}
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Text
	}
	return out
}
