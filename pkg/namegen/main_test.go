package namegen

import (
	"strings"
	"testing"
)

var testNames = []string{
	"aria", "arianne", "bella", "belinda", "carina", "cassandra", "delia",
	"dorian", "elena", "elisa", "fiora", "galena", "helena", "iris", "isolde",
	"jarena", "kalinda", "lorena", "marina", "melisande", "nadia", "orla",
	"perrin", "rosalind", "selena", "sorina", "talia", "valeria", "yarina",
}

// learnWords is a helper that learns words into gen and fails the test on error.
func learnWords(t testing.TB, gen Generator, words ...string) {
	t.Helper()
	if err := gen.Learn(NewSampleSet().AddWords(words...)); err != nil {
		t.Fatalf("Learn() error = %v", err)
	}
}

// generateN returns n independent results generated with the given seed.
func generateN(gen Generator, seed uint64, n int) []string {
	state := NewGenerationState()
	rng := NewRand(seed)
	out := make([]string, n)
	for i := range out {
		out[i] = strings.Clone(gen.Generate(state, rng))
	}
	return out
}
