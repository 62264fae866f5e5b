package namegen

import "testing"

func TestApplyRules(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		rules []FormattingRule
		want  string
	}{
		{
			name:  "No rules",
			input: "aria",
			want:  "aria",
		},
		{
			name:  "Capitalize first",
			input: "aria",
			rules: []FormattingRule{{Op: CapitalizeFirst}},
			want:  "Aria",
		},
		{
			name:  "Capitalize all expands sharp s",
			input: "straße",
			rules: []FormattingRule{{Op: CapitalizeAll}},
			want:  "STRASSE",
		},
		{
			name:  "Capitalize first multibyte",
			input: "ólafur",
			rules: []FormattingRule{{Op: CapitalizeFirst}},
			want:  "Ólafur",
		},
		{
			name:  "Capitalize after apostrophe",
			input: "t'soni",
			rules: []FormattingRule{{Op: CapitalizeFirst}, {Op: CapitalizeAfter, Char: "'"}},
			want:  "T'Soni",
		},
		{
			name:  "Capitalize after then remove",
			input: "du_bois",
			rules: []FormattingRule{{Op: Remove, Char: "_"}, {Op: CapitalizeFirst}, {Op: CapitalizeAfter, Char: "_"}},
			want:  "DuBois",
		},
		{
			name:  "Replace with space",
			input: "jan_mayr",
			rules: []FormattingRule{{Op: Replace, Char: "_", To: " "}},
			want:  "jan mayr",
		},
		{
			name:  "Replace with several characters",
			input: "a-b",
			rules: []FormattingRule{{Op: Replace, Char: "-", To: " of "}},
			want:  "a of b",
		},
		{
			name:  "Replace chain",
			input: "a-b",
			rules: []FormattingRule{{Op: Replace, Char: "-", To: "_"}, {Op: Replace, Char: "_", To: "+"}},
			want:  "a+b",
		},
		{
			name:  "Capitalize after at end",
			input: "ab-",
			rules: []FormattingRule{{Op: CapitalizeAfter, Char: "-"}},
			want:  "ab-",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			state := NewGenerationState()
			state.out = append(state.out, tc.input...)
			applyRules(tc.rules, state)
			if got := state.Result(); got != tc.want {
				t.Errorf("applyRules(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestFormattingRuleValidate(t *testing.T) {
	testCases := []struct {
		rule    FormattingRule
		wantErr bool
	}{
		{rule: FormattingRule{Op: CapitalizeFirst}},
		{rule: FormattingRule{Op: CapitalizeAll}},
		{rule: FormattingRule{Op: CapitalizeAfter, Char: "-"}},
		{rule: FormattingRule{Op: Remove, Char: "ß"}},
		{rule: FormattingRule{Op: Replace, Char: "_"}},
		{rule: FormattingRule{Op: Remove}, wantErr: true},
		{rule: FormattingRule{Op: Replace, Char: "ab", To: "c"}, wantErr: true},
		{rule: FormattingRule{Op: "shout"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(string(tc.rule.Op), func(t *testing.T) {
			if err := tc.rule.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
