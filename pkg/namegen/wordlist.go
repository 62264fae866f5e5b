package namegen

import (
	"io"
	"log/slog"
)

const wordListKind = "wordlist"

type wordEntry struct {
	word   string
	weight int
}

// WordList picks whole words from a weighted list. Learning a word that is
// already present adds to its weight.
type WordList struct {
	words       []wordEntry
	index       map[string]int
	totalWeight int

	logger *slog.Logger
}

// NewWordList creates an empty WordList.
func NewWordList() *WordList {
	return &WordList{
		index:  make(map[string]int),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the list. By default, all logs are discarded.
func (l *WordList) SetLogger(logger *slog.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// Learn adds every word sample in the set. A weight of 0 or less counts as 1.
// Sets containing a tokens sample are rejected whole.
func (l *WordList) Learn(set *SampleSet) error {
	if set == nil || len(set.Samples) == 0 {
		return nil
	}
	for i := range set.Samples {
		if s := &set.Samples[i]; s.Kind() != KindWord {
			return newLearnError(WrongSampleKind, s, "incorrect sample kind %s, must be word", s.Kind())
		}
	}

	for _, s := range set.Samples {
		weight := max(s.Weight, 1)
		if i, ok := l.index[s.Word]; ok {
			l.words[i].weight += weight
		} else {
			l.index[s.Word] = len(l.words)
			l.words = append(l.words, wordEntry{word: s.Word, weight: weight})
		}
		l.totalWeight += weight
	}

	l.logger.Debug("Word list samples learned",
		slog.Int("samples", len(set.Samples)),
		slog.Int("words", len(l.words)),
		slog.Int("total_weight", l.totalWeight),
	)
	return nil
}

// Generate writes a weighted random word into state.
func (l *WordList) Generate(state *GenerationState, rng Rand) string {
	state.reset()
	if len(l.words) == 0 || l.totalWeight <= 0 {
		return ""
	}

	r := rng.IntN(l.totalWeight)
	i := 0
	for ; i < len(l.words)-1; i++ {
		if r < l.words[i].weight {
			break
		}
		r -= l.words[i].weight
	}
	state.out = append(state.out, l.words[i].word...)
	return state.Result()
}

// Validate checks the word weights against the recorded total.
func (l *WordList) Validate() error {
	sum := 0
	seen := make(map[string]struct{}, len(l.words))
	for i, w := range l.words {
		if w.weight <= 0 {
			return newValidationError(wordListKind, "word %d has non-positive weight %d", i, w.weight)
		}
		if _, ok := seen[w.word]; ok {
			return newValidationError(wordListKind, "word %q is listed more than once", w.word)
		}
		seen[w.word] = struct{}{}
		sum += w.weight
	}
	if sum != l.totalWeight {
		return newValidationError(wordListKind, "word weights sum to %d, total is %d", sum, l.totalWeight)
	}
	return nil
}

func (l *WordList) rebuildIndexes() {
	l.index = make(map[string]int, len(l.words))
	for i, w := range l.words {
		l.index[w.word] = i
	}
}
