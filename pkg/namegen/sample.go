package namegen

// SampleKind tells the engines how a Sample should be interpreted.
type SampleKind int

const (
	// KindWord is a whole word, tokenized by the engine itself.
	KindWord SampleKind = iota
	// KindTokens is an ordered list of pre-split tokens, one per column.
	KindTokens
)

func (k SampleKind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindTokens:
		return "tokens"
	default:
		return "unknown"
	}
}

// Sample is a single learning input. It is either a word (Word, with an
// optional Weight used by WordList) or an ordered list of Tokens. A non-nil
// Tokens slice makes it a tokens sample.
type Sample struct {
	Word   string   `json:"word,omitempty" yaml:"word,omitempty"`
	Weight int      `json:"weight,omitempty" yaml:"weight,omitempty"`
	Tokens []string `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

// Word returns a word sample.
func Word(word string) Sample {
	return Sample{Word: word}
}

// WeightedWord returns a word sample with an explicit weight.
func WeightedWord(word string, weight int) Sample {
	return Sample{Word: word, Weight: weight}
}

// Tokens returns a tokens sample.
func Tokens(tokens ...string) Sample {
	if tokens == nil {
		tokens = []string{}
	}
	return Sample{Tokens: tokens}
}

// Kind reports whether the sample is a word or a token list.
func (s Sample) Kind() SampleKind {
	if s.Tokens != nil {
		return KindTokens
	}
	return KindWord
}

// SampleSet is a batch of samples learned together. Labels name the columns
// of token samples for the Grammar engine; "*" makes an anonymous column.
type SampleSet struct {
	Labels  []string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Samples []Sample `json:"samples" yaml:"samples"`
}

// NewSampleSet creates an empty set with the given column labels.
func NewSampleSet(labels ...string) *SampleSet {
	return &SampleSet{Labels: labels}
}

// Add appends samples to the set and returns it for chaining.
func (s *SampleSet) Add(samples ...Sample) *SampleSet {
	s.Samples = append(s.Samples, samples...)
	return s
}

// AddWords appends one word sample per argument.
func (s *SampleSet) AddWords(words ...string) *SampleSet {
	for _, w := range words {
		s.Samples = append(s.Samples, Word(w))
	}
	return s
}

// AddTokens appends a single tokens sample.
func (s *SampleSet) AddTokens(tokens ...string) *SampleSet {
	s.Samples = append(s.Samples, Tokens(tokens...))
	return s
}
