package namegen

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"slices"
	"testing"
)

func learnRows(t testing.TB, g *Grammar, labels []string, rows ...[]string) {
	t.Helper()
	set := NewSampleSet(labels...)
	for _, row := range rows {
		set.AddTokens(row...)
	}
	if err := g.Learn(set); err != nil {
		t.Fatalf("Learn() error = %v", err)
	}
}

func TestGrammarCrossProduct(t *testing.T) {
	g := NewGrammar()
	learnRows(t, g, []string{"cons", "vowel"}, []string{"t", "a"}, []string{"k", "i"})

	want := []string{"ka", "ki", "ta", "ti"}
	seen := make(map[string]bool)
	for _, got := range generateN(g, 1, 400) {
		if !slices.Contains(want, got) {
			t.Fatalf("Generate() = %q, want one of %q", got, want)
		}
		seen[got] = true
	}
	if len(seen) != len(want) {
		t.Errorf("Generate() produced %d distinct names, want all %d", len(seen), len(want))
	}
}

func TestGrammarDuplicateRow(t *testing.T) {
	g := NewGrammar()
	learnRows(t, g, []string{"cons", "vowel"}, []string{"t", "a"})
	learnRows(t, g, []string{"cons", "vowel"}, []string{"t", "a"})

	if len(g.results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(g.results))
	}
	if g.results[0].weight != 2 || g.totalWeight != 2 {
		t.Errorf("result weight = %d, total = %d; want 2, 2", g.results[0].weight, g.totalWeight)
	}
	if len(g.tokens) != 2 {
		t.Errorf("len(tokens) = %d, want 2", len(g.tokens))
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestGrammarLearnErrors(t *testing.T) {
	testCases := []struct {
		name    string
		set     *SampleSet
		wantErr error
	}{
		{
			name:    "Word sample",
			set:     NewSampleSet("a").AddWords("word"),
			wantErr: ErrWrongSampleKind,
		},
		{
			name:    "Too few columns for labels",
			set:     NewSampleSet("a", "b").AddTokens("x"),
			wantErr: ErrLabelLengthMismatch,
		},
		{
			name:    "Inferred column count differs",
			set:     NewSampleSet().AddTokens("x", "y").AddTokens("x", "y", "z"),
			wantErr: ErrLabelLengthMismatch,
		},
		{
			name:    "No columns",
			set:     NewSampleSet().AddTokens(),
			wantErr: ErrLabelLengthMismatch,
		},
		{
			name:    "Reserved label",
			set:     NewSampleSet("anon_1").AddTokens("x"),
			wantErr: ErrReservedLabelPrefix,
		},
		{
			name:    "Valid rows before a bad one",
			set:     NewSampleSet("cons", "vowel").AddTokens("zh", "o").AddTokens("q"),
			wantErr: ErrLabelLengthMismatch,
		},
	}

	shared := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGrammar()
			want := NewGrammar()
			for _, e := range []*Grammar{g, want} {
				e.SetLogger(shared)
				learnRows(t, e, []string{"cons", "vowel"}, []string{"t", "a"}, []string{"k", "i"})
			}

			if err := g.Learn(tc.set); !errors.Is(err, tc.wantErr) {
				t.Fatalf("Learn() error = %v, want %v", err, tc.wantErr)
			}
			if !reflect.DeepEqual(g, want) {
				t.Error("engine changed after a failed Learn()")
			}
		})
	}
}

func TestGrammarAnonymousLabels(t *testing.T) {
	g := NewGrammar()
	learnRows(t, g, []string{"*", "*"}, []string{"a", "b"})
	learnRows(t, g, nil, []string{"c", "d"})

	if len(g.rules) != 4 {
		t.Fatalf("len(rules) = %d, want 4 separate anonymous slots", len(g.rules))
	}
	if len(g.results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(g.results))
	}
	for _, got := range generateN(g, 3, 100) {
		if got != "ab" && got != "cd" {
			t.Fatalf("Generate() = %q, want %q or %q", got, "ab", "cd")
		}
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestGrammarSharedLabels(t *testing.T) {
	g := NewGrammar()
	learnRows(t, g, []string{"cons", "vowel"}, []string{"t", "a"})
	learnRows(t, g, []string{"vowel", "cons", "vowel"}, []string{"e", "l", "o"})

	if len(g.rules) != 2 {
		t.Fatalf("len(rules) = %d, want 2", len(g.rules))
	}
	for _, got := range generateN(g, 8, 200) {
		switch len(got) {
		case 2, 3:
		default:
			t.Fatalf("Generate() = %q, want two or three characters", got)
		}
	}
}

func TestGrammarAdjacentRestriction(t *testing.T) {
	g := NewGrammar(WithAdjacentSubtokenRestriction(true))
	learnRows(t, g, []string{"head", "tail"}, []string{"ta", "ob"}, []string{"ko", "ab"})

	for _, got := range generateN(g, 21, 300) {
		if got != "taob" && got != "koab" {
			t.Fatalf("Generate() = %q, want %q or %q", got, "taob", "koab")
		}
	}
}

func TestGrammarAdjacentRestrictionBacktracks(t *testing.T) {
	g := NewGrammar(WithAdjacentSubtokenRestriction(true))
	learnRows(t, g, []string{"s1", "s2"}, []string{"ab", "zz"}, []string{"xa", "by"})

	seen := make(map[string]int)
	for _, got := range generateN(g, 8, 400) {
		seen[got]++
	}
	if seen["abby"] > 0 {
		t.Errorf("Generate() produced %q %d times", "abby", seen["abby"])
	}
	for _, want := range []string{"abzz", "xaby", "xazz"} {
		if seen[want] == 0 {
			t.Errorf("Generate() never produced %q; got %v", want, seen)
		}
	}
}

func TestGrammarExhaustedSlotRedrawsPrevious(t *testing.T) {
	// Every second-slot value starts with "b", so "ab" can never be completed
	// and must be undone in favour of "xa".
	g := NewGrammar(WithAdjacentSubtokenRestriction(true))
	learnRows(t, g, []string{"s1", "s2"}, []string{"ab", "by"}, []string{"xa", "bz"})

	seen := make(map[string]int)
	for _, got := range generateN(g, 13, 400) {
		seen[got]++
	}
	if len(seen) != 2 || seen["xaby"] == 0 || seen["xabz"] == 0 {
		t.Errorf("Generate() results = %v, want only %q and %q", seen, "xaby", "xabz")
	}
}

func TestGrammarFrequencyRestriction(t *testing.T) {
	g := NewGrammar(WithSubtokenFrequencyRestriction(true))
	learnRows(t, g, []string{"x", "y"}, []string{"a", "b"}, []string{"b", "a"})

	for _, got := range generateN(g, 4, 300) {
		if got != "ab" && got != "ba" {
			t.Fatalf("Generate() = %q, want %q or %q", got, "ab", "ba")
		}
	}
}

func TestGrammarFrequencyCeilings(t *testing.T) {
	g := NewGrammar()
	learnRows(t, g, []string{"x", "y"}, []string{"ana", "na"}, []string{"o", "o"})

	want := map[string]int{"a": 3, "n": 2, "o": 2}
	for s, c := range want {
		if got := g.maxSubtokens[g.subtokenIndex[s]]; got != c {
			t.Errorf("ceiling of %q = %d, want %d", s, got, c)
		}
	}
}

func TestGrammarPredefinedSubtokens(t *testing.T) {
	g := NewGrammar(WithSubtokens("th", "ae"))
	learnRows(t, g, []string{"a", "b"}, []string{"th", "aed"})

	if got := g.tokens[0]; len(got) != 1 {
		t.Errorf("token %q split into %d subtokens, want 1", "th", len(got))
	}
	if got := g.tokens[1]; len(got) != 2 {
		t.Errorf("token %q split into %d subtokens, want 2", "aed", len(got))
	}
}

func TestGrammarValidateDetectsCorruption(t *testing.T) {
	testCases := []struct {
		name    string
		corrupt func(g *Grammar)
	}{
		{name: "Total weight", corrupt: func(g *Grammar) { g.totalWeight++ }},
		{name: "Rule index", corrupt: func(g *Grammar) { g.results[0].rules[0] = 99 }},
		{name: "Token index", corrupt: func(g *Grammar) { g.rules[0].tokens[0] = -1 }},
		{name: "Subtoken index", corrupt: func(g *Grammar) { g.tokens[0] = []int{42} }},
		{name: "Empty pool", corrupt: func(g *Grammar) { g.rules[1].tokens = nil }},
		{name: "Ceiling table", corrupt: func(g *Grammar) { g.maxSubtokens = g.maxSubtokens[:1] }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGrammar()
			learnRows(t, g, []string{"cons", "vowel"}, []string{"t", "a"}, []string{"k", "i"})
			tc.corrupt(g)

			var verr *ValidationError
			if err := g.Validate(); !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
		})
	}
}

func TestGrammarDeterminism(t *testing.T) {
	rows := [][]string{{"th", "or", "in"}, {"gal", "a", "dor"}, {"el", "ri", "on"}}
	a := NewGrammar()
	b := NewGrammar()
	learnRows(t, a, []string{"1", "2", "3"}, rows...)
	learnRows(t, b, []string{"1", "2", "3"}, rows...)

	if !slices.Equal(generateN(a, 99, 100), generateN(b, 99, 100)) {
		t.Error("same data and seed produced different names")
	}
}

func TestGrammarGenerateAllocations(t *testing.T) {
	g := NewGrammar(WithSubtokenFrequencyRestriction(true), WithAdjacentSubtokenRestriction(true))
	learnRows(t, g, []string{"1", "2", "3"}, []string{"th", "or", "in"}, []string{"gal", "a", "dor"}, []string{"el", "ri", "on"})

	state := NewGenerationState()
	rng := NewRand(1)
	for range 1000 {
		g.Generate(state, rng)
	}

	allocs := testing.AllocsPerRun(100, func() {
		g.Generate(state, rng)
	})
	if allocs != 0 {
		t.Errorf("Generate() allocated %.1f times per call, want 0", allocs)
	}
}

func BenchmarkGrammarGenerate(b *testing.B) {
	g := NewGrammar(WithSubtokenFrequencyRestriction(true))
	learnRows(b, g, []string{"1", "2", "3"}, []string{"th", "or", "in"}, []string{"gal", "a", "dor"}, []string{"el", "ri", "on"})
	state := NewGenerationState()
	rng := NewRand(1)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Generate(state, rng)
	}
}
