package namegen

import (
	"fmt"
	"slices"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatOp names a post-processing step applied to a generated part.
type FormatOp string

const (
	// CapitalizeFirst upper-cases the first character.
	CapitalizeFirst FormatOp = "capitalize_first"
	// CapitalizeAll upper-cases every character.
	CapitalizeAll FormatOp = "capitalize_all"
	// CapitalizeAfter upper-cases every character that follows Char.
	CapitalizeAfter FormatOp = "capitalize_after"
	// Remove deletes every occurrence of Char.
	Remove FormatOp = "remove"
	// Replace substitutes To for every occurrence of Char.
	Replace FormatOp = "replace"
)

// FormattingRule is one post-processing step. Capitalization rules always
// run before removal and replacement rules, each group in the order given.
type FormattingRule struct {
	Op   FormatOp `json:"op" yaml:"op"`
	Char string   `json:"char,omitempty" yaml:"char,omitempty"`
	To   string   `json:"to,omitempty" yaml:"to,omitempty"`
}

// Validate reports whether the rule is well formed.
func (r FormattingRule) Validate() error {
	switch r.Op {
	case CapitalizeFirst, CapitalizeAll:
		return nil
	case CapitalizeAfter, Remove, Replace:
		if utf8.RuneCountInString(r.Char) != 1 {
			return fmt.Errorf("formatting rule %s needs exactly one character, got %q", r.Op, r.Char)
		}
		return nil
	default:
		return fmt.Errorf("unknown formatting rule %q", r.Op)
	}
}

func (r FormattingRule) isCapitalization() bool {
	return r.Op == CapitalizeFirst || r.Op == CapitalizeAll || r.Op == CapitalizeAfter
}

func (r FormattingRule) char() rune {
	c, _ := utf8.DecodeRuneInString(r.Char)
	return c
}

// applyRules rewrites state's output using the char buffer.
func applyRules(rules []FormattingRule, state *GenerationState) {
	if len(rules) == 0 || len(state.out) == 0 {
		return
	}

	state.chars = state.chars[:0]
	for _, c := range bytesView(state.out) {
		state.chars = append(state.chars, c)
	}

	for _, rule := range rules {
		switch rule.Op {
		case CapitalizeFirst:
			state.upperAt(0)
		case CapitalizeAll:
			for i := 0; i < len(state.chars); {
				i += state.upperAt(i)
			}
		case CapitalizeAfter:
			after := rule.char()
			for i := 1; i < len(state.chars); i++ {
				if state.chars[i-1] == after {
					i += state.upperAt(i) - 1
				}
			}
		}
	}

	state.out = state.out[:0]
	for _, c := range state.chars {
		state.out = appendFormatted(state.out, c, rules)
	}
}

func appendFormatted(out []byte, c rune, rules []FormattingRule) []byte {
	for _, rule := range rules {
		if rule.isCapitalization() || c != rule.char() {
			continue
		}
		switch rule.Op {
		case Remove:
			return out
		case Replace:
			to, size := utf8.DecodeRuneInString(rule.To)
			if size == len(rule.To) && size > 0 {
				c = to
				continue
			}
			return append(out, rule.To...)
		}
	}
	return utf8.AppendRune(out, c)
}

// upperAt upper-cases the character at i and returns how many characters
// now stand in its place.
func (s *GenerationState) upperAt(i int) int {
	if i >= len(s.chars) {
		return 1
	}
	c := s.chars[i]
	if u := unicode.ToUpper(c); u != c || !unicode.IsLower(c) {
		s.chars[i] = u
		return 1
	}

	// Characters such as ß have no single-character upper case.
	expanded := []rune(cases.Upper(language.Und).String(string(c)))
	if len(expanded) <= 1 {
		if len(expanded) == 1 {
			s.chars[i] = expanded[0]
		}
		return 1
	}
	s.chars[i] = expanded[0]
	s.chars = slices.Insert(s.chars, i+1, expanded[1:]...)
	return len(expanded)
}
