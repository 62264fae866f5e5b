package namegen

import (
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	grammarKind = "grammar"

	// AnonymousLabel gives a column its own unnamed slot.
	AnonymousLabel = "*"
	// ReservedPrefix starts the generated names of anonymous slots and may
	// not be used by labels.
	ReservedPrefix = "anon_"
)

type tokenRule struct {
	label  string
	tokens []int
}

type resultRule struct {
	rules  []int
	weight int
}

// Grammar learns names that are already split into labeled columns, such as
// a consonant cluster followed by a vowel, and generates new ones by filling
// each column of a learned row shape from the pool of values seen in that
// column.
type Grammar struct {
	subtokens      []string
	subtokenIndex  map[string]int
	maxSubtokenLen int
	maxSubtokens   []int

	tokens     [][]int
	tokenIndex map[string]int

	rules     []tokenRule
	ruleIndex map[string]int

	results     []resultRule
	resultIndex map[string]int
	totalWeight int

	restrictSubtokenFreq bool
	restrictAdjacent     bool

	keyBuf []byte
	logger *slog.Logger
}

// GrammarOption configures a Grammar engine.
type GrammarOption func(*Grammar)

// WithSubtokens predefines multi-character subtokens used when splitting
// column values.
func WithSubtokens(subtokens ...string) GrammarOption {
	return func(g *Grammar) {
		for _, s := range subtokens {
			if s == "" {
				continue
			}
			if _, ok := g.subtokenIndex[s]; !ok {
				g.addSubtoken(s)
			}
		}
	}
}

// WithSubtokenFrequencyRestriction forbids a subtoken from appearing in a
// result more often than it appeared in any single learned sample.
func WithSubtokenFrequencyRestriction(on bool) GrammarOption {
	return func(g *Grammar) { g.restrictSubtokenFreq = on }
}

// WithAdjacentSubtokenRestriction rejects a column value that starts with
// the subtoken the previous column ended with.
func WithAdjacentSubtokenRestriction(on bool) GrammarOption {
	return func(g *Grammar) { g.restrictAdjacent = on }
}

// NewGrammar creates an empty Grammar engine.
func NewGrammar(opts ...GrammarOption) *Grammar {
	g := &Grammar{
		subtokenIndex: make(map[string]int),
		tokenIndex:    make(map[string]int),
		ruleIndex:     make(map[string]int),
		resultIndex:   make(map[string]int),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetLogger sets the logger for the engine. By default, all logs are discarded.
func (g *Grammar) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Learn learns every tokens sample in the set. The set is checked as a whole
// before anything is recorded, so a failing set leaves the engine unchanged.
func (g *Grammar) Learn(set *SampleSet) error {
	if set == nil || len(set.Samples) == 0 {
		return nil
	}

	columns, err := checkGrammarSet(set)
	if err != nil {
		return err
	}

	slots := make([]int, columns)
	for col := range slots {
		label := AnonymousLabel
		if len(set.Labels) > 0 {
			label = set.Labels[col]
		}
		slots[col] = g.ensureRule(label)
	}

	ri := g.ensureResult(slots)
	composed := make([]int, 0, 16)
	for i := range set.Samples {
		g.results[ri].weight++
		g.totalWeight++

		composed = composed[:0]
		for col, text := range set.Samples[i].Tokens {
			ti := g.ensureToken(g.split(text))
			g.rules[slots[col]].tokens = append(g.rules[slots[col]].tokens, ti)
			composed = append(composed, g.tokens[ti]...)
		}
		g.updateCeilings(composed)
	}

	g.logger.Debug("Grammar samples learned",
		slog.Int("samples", len(set.Samples)),
		slog.Int("subtokens", len(g.subtokens)),
		slog.Int("tokens", len(g.tokens)),
		slog.Int("rules", len(g.rules)),
		slog.Int("results", len(g.results)),
	)
	return nil
}

// checkGrammarSet returns the column count of a set or the first reason it
// cannot be learned.
func checkGrammarSet(set *SampleSet) (int, error) {
	for _, label := range set.Labels {
		if strings.HasPrefix(label, ReservedPrefix) {
			return 0, newLearnError(ReservedLabelPrefix, nil, "label %q uses reserved prefix %q", label, ReservedPrefix)
		}
	}

	columns := len(set.Labels)
	for i := range set.Samples {
		s := &set.Samples[i]
		if s.Kind() != KindTokens {
			return 0, newLearnError(WrongSampleKind, s, "incorrect sample kind %s, must be tokens", s.Kind())
		}
		if columns == 0 {
			columns = len(s.Tokens)
		}
		if len(s.Tokens) != columns {
			return 0, newLearnError(LabelLengthMismatch, s, "token lengths must match (%d expected, %d provided)", columns, len(s.Tokens))
		}
	}
	if columns == 0 {
		return 0, newLearnError(LabelLengthMismatch, &set.Samples[0], "at least one column required")
	}
	return columns, nil
}

// split breaks text into subtokens by taking the longest known subtoken at
// each position, minting a single-character subtoken when nothing matches.
func (g *Grammar) split(text string) []int {
	seq := make([]int, 0, len(text))
	for rem := text; len(rem) > 0; {
		found := false
		for l := min(g.maxSubtokenLen, len(rem)); l > 0; l-- {
			if i, ok := g.subtokenIndex[rem[:l]]; ok {
				seq = append(seq, i)
				rem = rem[l:]
				found = true
				break
			}
		}
		if found {
			continue
		}

		_, size := utf8.DecodeRuneInString(rem)
		seq = append(seq, g.addSubtoken(rem[:size]))
		rem = rem[size:]
	}
	return seq
}

func (g *Grammar) addSubtoken(s string) int {
	i := len(g.subtokens)
	g.subtokens = append(g.subtokens, s)
	g.maxSubtokens = append(g.maxSubtokens, 0)
	g.subtokenIndex[s] = i
	g.maxSubtokenLen = max(g.maxSubtokenLen, len(s))
	return i
}

func (g *Grammar) ensureToken(seq []int) int {
	g.keyBuf = appendIndexKey(g.keyBuf[:0], seq)
	if i, ok := g.tokenIndex[string(g.keyBuf)]; ok {
		return i
	}
	i := len(g.tokens)
	g.tokens = append(g.tokens, seq)
	g.tokenIndex[string(g.keyBuf)] = i
	return i
}

// ensureRule returns the slot for label. Every anonymous label gets a fresh
// slot named after its index.
func (g *Grammar) ensureRule(label string) int {
	if label == AnonymousLabel || label == "" {
		i := len(g.rules)
		g.rules = append(g.rules, tokenRule{label: ReservedPrefix + strconv.Itoa(i)})
		return i
	}
	if i, ok := g.ruleIndex[label]; ok {
		return i
	}
	i := len(g.rules)
	g.rules = append(g.rules, tokenRule{label: label})
	g.ruleIndex[label] = i
	return i
}

func (g *Grammar) ensureResult(slots []int) int {
	g.keyBuf = appendIndexKey(g.keyBuf[:0], slots)
	if i, ok := g.resultIndex[string(g.keyBuf)]; ok {
		return i
	}
	i := len(g.results)
	g.results = append(g.results, resultRule{rules: append([]int(nil), slots...)})
	g.resultIndex[string(g.keyBuf)] = i
	return i
}

// updateCeilings raises each subtoken's ceiling to its count in composed.
func (g *Grammar) updateCeilings(composed []int) {
	for i, s := range composed {
		if indexOf(composed[:i], s) >= 0 {
			continue
		}
		if c := countToken(composed[i:], s); c > g.maxSubtokens[s] {
			g.maxSubtokens[s] = c
		}
	}
}

// appendIndexKey encodes a sequence of indices as a map key.
func appendIndexKey(buf []byte, seq []int) []byte {
	for i, v := range seq {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, int64(v), 10)
	}
	return buf
}

func indexOf(list []int, v int) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}

func (g *Grammar) rebuildIndexes() {
	g.subtokenIndex = make(map[string]int, len(g.subtokens))
	g.maxSubtokenLen = 0
	for i, s := range g.subtokens {
		if _, ok := g.subtokenIndex[s]; !ok {
			g.subtokenIndex[s] = i
		}
		g.maxSubtokenLen = max(g.maxSubtokenLen, len(s))
	}

	g.tokenIndex = make(map[string]int, len(g.tokens))
	for i, seq := range g.tokens {
		g.keyBuf = appendIndexKey(g.keyBuf[:0], seq)
		g.tokenIndex[string(g.keyBuf)] = i
	}

	g.ruleIndex = make(map[string]int, len(g.rules))
	for i, r := range g.rules {
		if !strings.HasPrefix(r.label, ReservedPrefix) {
			g.ruleIndex[r.label] = i
		}
	}

	g.resultIndex = make(map[string]int, len(g.results))
	for i, r := range g.results {
		g.keyBuf = appendIndexKey(g.keyBuf[:0], r.rules)
		g.resultIndex[string(g.keyBuf)] = i
	}
}
