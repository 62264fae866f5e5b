package namegen

import (
	"io"
	"log/slog"
	"maps"
	"slices"
	"unicode/utf8"
)

const markovKind = "markov"

type startKey struct {
	first, second, length int
}

type nodeKey struct {
	prev   [2]int
	token  int
	length int
	ending bool
}

// contextKey is the trailing token pair of a non-ending node. Every node with
// the same trailing pair links to the same continuations.
type contextKey struct {
	first, second, length int
}

type startNode struct {
	tokens   [2]int
	weight   int
	length   int
	children []int
}

type markovNode struct {
	prev     [2]int
	token    int
	weight   int
	length   int
	ending   bool
	children []int
}

// Markov learns whole words and generates new ones by walking a graph of
// token transitions keyed on the two preceding tokens. The restriction flags
// trade variety for faithfulness to the samples.
type Markov struct {
	tokens      []string
	tokenIndex  map[string]int
	maxTokenLen int
	maxTokens   []int

	starts      []startNode
	startIndex  map[startKey]int
	totalStarts int

	nodes        []markovNode
	nodeIndex    map[nodeKey]int
	contextIndex map[contextKey][]int

	lengths      []int
	totalLengths int

	restrictStartLength  bool
	restrictMiddleLength bool
	restrictEndLength    bool
	restrictTokenFreq    bool

	logger *slog.Logger
}

// MarkovOption configures a Markov engine.
type MarkovOption func(*Markov)

// WithTokens predefines multi-character tokens, such as digraphs ("th") or
// vowel pairs ("ae"), so they are learned and generated as one unit.
func WithTokens(tokens ...string) MarkovOption {
	return func(m *Markov) {
		for _, t := range tokens {
			if t == "" {
				continue
			}
			if _, ok := m.tokenIndex[t]; !ok {
				m.addToken(t)
			}
		}
	}
}

// WithStartLengthRestriction ties each start to the length of the samples it
// was learned from, so generated names keep the lengths seen after that start.
func WithStartLengthRestriction(on bool) MarkovOption {
	return func(m *Markov) { m.restrictStartLength = on }
}

// WithMiddleLengthRestriction keys middle nodes on the sample length.
func WithMiddleLengthRestriction(on bool) MarkovOption {
	return func(m *Markov) { m.restrictMiddleLength = on }
}

// WithEndLengthRestriction keys ending nodes on the sample length and only
// accepts an ending whose recorded length equals the target length.
func WithEndLengthRestriction(on bool) MarkovOption {
	return func(m *Markov) { m.restrictEndLength = on }
}

// WithTokenFrequencyRestriction forbids a token from appearing in a result
// more often than it ever appeared in a single sample.
func WithTokenFrequencyRestriction(on bool) MarkovOption {
	return func(m *Markov) { m.restrictTokenFreq = on }
}

// NewMarkov creates an empty Markov engine.
func NewMarkov(opts ...MarkovOption) *Markov {
	m := &Markov{
		tokenIndex:   make(map[string]int),
		startIndex:   make(map[startKey]int),
		nodeIndex:    make(map[nodeKey]int),
		contextIndex: make(map[contextKey][]int),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetLogger sets the logger for the engine. By default, all logs are discarded.
func (m *Markov) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Learn learns every word sample in the set. A set with several samples is
// applied all-or-nothing: if any sample fails, the engine is restored to its
// state before the call and the first error is returned.
func (m *Markov) Learn(set *SampleSet) error {
	if set == nil || len(set.Samples) == 0 {
		return nil
	}

	if len(set.Samples) == 1 {
		// learnSample checks everything before it mutates, so no snapshot.
		if err := m.learnSample(&set.Samples[0]); err != nil {
			return err
		}
	} else {
		snapshot := m.clone()
		for i := range set.Samples {
			if err := m.learnSample(&set.Samples[i]); err != nil {
				*m = *snapshot
				return err
			}
		}
	}

	m.recalculateWeights()

	m.logger.Debug("Markov samples learned",
		slog.Int("samples", len(set.Samples)),
		slog.Int("tokens", len(m.tokens)),
		slog.Int("starts", len(m.starts)),
		slog.Int("nodes", len(m.nodes)),
	)
	return nil
}

func (m *Markov) learnSample(sample *Sample) error {
	if sample.Kind() != KindWord {
		return newLearnError(WrongSampleKind, sample, "incorrect sample kind %s, must be word", sample.Kind())
	}

	tokens, pending := m.tokenize(sample.Word)
	if len(tokens) < 3 {
		return newLearnError(InsufficientTokens, sample, "3 or more tokens required (%d provided)", len(tokens))
	}
	for _, p := range pending {
		m.addToken(p)
	}
	n := len(tokens)

	if m.restrictTokenFreq {
		counts := make(map[int]int, n)
		for _, t := range tokens {
			counts[t]++
		}
		for t, c := range counts {
			if c > m.maxTokens[t] {
				m.maxTokens[t] = c
			}
		}
	}

	sk := startKey{first: tokens[0], second: tokens[1]}
	if m.restrictStartLength {
		sk.length = n
	}
	si, ok := m.startIndex[sk]
	if !ok {
		si = len(m.starts)
		m.starts = append(m.starts, startNode{
			tokens: [2]int{sk.first, sk.second},
			length: sk.length,
		})
		m.startIndex[sk] = si
	}
	m.starts[si].weight++
	m.totalStarts++

	for len(m.lengths) <= n-3 {
		m.lengths = append(m.lengths, 0)
	}
	m.lengths[n-3]++
	m.totalLengths++

	var lengthM, lengthE int
	if m.restrictMiddleLength {
		lengthM = n
	}
	if m.restrictEndLength {
		lengthE = n
	}

	prev := [2]int{tokens[0], tokens[1]}
	for i := 2; i < n; i++ {
		token := tokens[i]
		ending := i == n-1
		length := lengthM
		if ending {
			length = lengthE
		}

		current := m.ensureNode(prev, token, length, ending)

		if i == 2 {
			m.starts[si].children = appendUnique(m.starts[si].children, current)
		} else {
			for _, p := range m.contextIndex[contextKey{first: prev[0], second: prev[1], length: lengthM}] {
				m.nodes[p].children = appendUnique(m.nodes[p].children, current)
			}
		}

		prev = [2]int{prev[1], token}
	}

	return nil
}

// tokenize splits word by taking the longest known token at each position.
// Characters that match nothing become new single-character tokens; they
// are returned in pending and only get indices reserved, not added.
func (m *Markov) tokenize(word string) (tokens []int, pending []string) {
	tokens = make([]int, 0, len(word))
	limit := max(m.maxTokenLen, utf8.UTFMax)

	lookup := func(s string) (int, bool) {
		if i, ok := m.tokenIndex[s]; ok {
			return i, true
		}
		for k, p := range pending {
			if p == s {
				return len(m.tokens) + k, true
			}
		}
		return 0, false
	}

	for rem := word; len(rem) > 0; {
		found := false
		for l := min(limit, len(rem)); l > 0; l-- {
			if i, ok := lookup(rem[:l]); ok {
				tokens = append(tokens, i)
				rem = rem[l:]
				found = true
				break
			}
		}
		if found {
			continue
		}

		_, size := utf8.DecodeRuneInString(rem)
		pending = append(pending, rem[:size])
		tokens = append(tokens, len(m.tokens)+len(pending)-1)
		rem = rem[size:]
	}

	return tokens, pending
}

func (m *Markov) addToken(t string) int {
	i := len(m.tokens)
	m.tokens = append(m.tokens, t)
	m.maxTokens = append(m.maxTokens, 0)
	m.tokenIndex[t] = i
	if len(t) > m.maxTokenLen {
		m.maxTokenLen = len(t)
	}
	return i
}

func (m *Markov) ensureNode(prev [2]int, token, length int, ending bool) int {
	key := nodeKey{prev: prev, token: token, length: length, ending: ending}
	if i, ok := m.nodeIndex[key]; ok {
		return i
	}

	i := len(m.nodes)
	m.nodes = append(m.nodes, markovNode{
		prev:   prev,
		token:  token,
		weight: 1,
		length: length,
		ending: ending,
	})
	m.nodeIndex[key] = i
	if !ending {
		ck := contextKey{first: prev[1], second: token, length: length}
		m.contextIndex[ck] = append(m.contextIndex[ck], i)
	}
	return i
}

func appendUnique(list []int, v int) []int {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}

// clone returns a deep copy used to roll back a failed batch.
func (m *Markov) clone() *Markov {
	c := *m
	c.tokens = slices.Clone(m.tokens)
	c.tokenIndex = maps.Clone(m.tokenIndex)
	c.maxTokens = slices.Clone(m.maxTokens)
	c.starts = slices.Clone(m.starts)
	for i := range c.starts {
		c.starts[i].children = slices.Clone(c.starts[i].children)
	}
	c.startIndex = maps.Clone(m.startIndex)
	c.nodes = slices.Clone(m.nodes)
	for i := range c.nodes {
		c.nodes[i].children = slices.Clone(c.nodes[i].children)
	}
	c.nodeIndex = maps.Clone(m.nodeIndex)
	c.contextIndex = make(map[contextKey][]int, len(m.contextIndex))
	for k, v := range m.contextIndex {
		c.contextIndex[k] = slices.Clone(v)
	}
	c.lengths = slices.Clone(m.lengths)
	return &c
}

// rebuildIndexes recreates the lookup maps from the arenas after the engine
// has been decoded.
func (m *Markov) rebuildIndexes() {
	m.tokenIndex = make(map[string]int, len(m.tokens))
	m.maxTokenLen = 0
	for i, t := range m.tokens {
		if _, ok := m.tokenIndex[t]; !ok {
			m.tokenIndex[t] = i
		}
		m.maxTokenLen = max(m.maxTokenLen, len(t))
	}

	m.startIndex = make(map[startKey]int, len(m.starts))
	for i, s := range m.starts {
		m.startIndex[startKey{first: s.tokens[0], second: s.tokens[1], length: s.length}] = i
	}

	m.nodeIndex = make(map[nodeKey]int, len(m.nodes))
	m.contextIndex = make(map[contextKey][]int)
	for i, n := range m.nodes {
		m.nodeIndex[nodeKey{prev: n.prev, token: n.token, length: n.length, ending: n.ending}] = i
		if !n.ending {
			ck := contextKey{first: n.prev[1], second: n.token, length: n.length}
			m.contextIndex[ck] = append(m.contextIndex[ck], i)
		}
	}
}
