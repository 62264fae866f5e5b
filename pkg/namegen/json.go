package namegen

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

type markovJSON struct {
	Tokens       []string         `json:"tokens"`
	MaxTokens    []int            `json:"max_tokens"`
	Starts       []markovStartDTO `json:"starts"`
	TotalStarts  int              `json:"total_starts"`
	Nodes        []markovNodeDTO  `json:"nodes"`
	Lengths      []int            `json:"lengths"`
	TotalLengths int              `json:"total_lengths"`

	RestrictStartLength  bool `json:"restrict_start_length"`
	RestrictMiddleLength bool `json:"restrict_middle_length"`
	RestrictEndLength    bool `json:"restrict_end_length"`
	RestrictTokenFreq    bool `json:"restrict_token_frequency"`
}

type markovStartDTO struct {
	Tokens   [2]int `json:"tokens"`
	Weight   int    `json:"weight"`
	Length   int    `json:"length,omitempty"`
	Children []int  `json:"children"`
}

type markovNodeDTO struct {
	Prev     [2]int `json:"prev"`
	Token    int    `json:"token"`
	Weight   int    `json:"weight"`
	Length   int    `json:"length,omitempty"`
	Ending   bool   `json:"ending,omitempty"`
	Children []int  `json:"children,omitempty"`
}

// MarshalJSON encodes the learned model. Lookup indexes are not stored.
func (m *Markov) MarshalJSON() ([]byte, error) {
	dto := markovJSON{
		Tokens:               m.tokens,
		MaxTokens:            m.maxTokens,
		Starts:               make([]markovStartDTO, len(m.starts)),
		TotalStarts:          m.totalStarts,
		Nodes:                make([]markovNodeDTO, len(m.nodes)),
		Lengths:              m.lengths,
		TotalLengths:         m.totalLengths,
		RestrictStartLength:  m.restrictStartLength,
		RestrictMiddleLength: m.restrictMiddleLength,
		RestrictEndLength:    m.restrictEndLength,
		RestrictTokenFreq:    m.restrictTokenFreq,
	}
	for i, s := range m.starts {
		dto.Starts[i] = markovStartDTO{Tokens: s.tokens, Weight: s.weight, Length: s.length, Children: s.children}
	}
	for i, n := range m.nodes {
		dto.Nodes[i] = markovNodeDTO{Prev: n.prev, Token: n.token, Weight: n.weight, Length: n.length, Ending: n.ending, Children: n.children}
	}
	return json.Marshal(dto)
}

// UnmarshalJSON decodes a model and rebuilds its indexes. The result is not
// validated; call Validate before generating from untrusted data.
func (m *Markov) UnmarshalJSON(data []byte) error {
	var dto markovJSON
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}

	logger := m.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	*m = Markov{
		tokens:               dto.Tokens,
		maxTokens:            dto.MaxTokens,
		starts:               make([]startNode, len(dto.Starts)),
		totalStarts:          dto.TotalStarts,
		nodes:                make([]markovNode, len(dto.Nodes)),
		lengths:              dto.Lengths,
		totalLengths:         dto.TotalLengths,
		restrictStartLength:  dto.RestrictStartLength,
		restrictMiddleLength: dto.RestrictMiddleLength,
		restrictEndLength:    dto.RestrictEndLength,
		restrictTokenFreq:    dto.RestrictTokenFreq,
		logger:               logger,
	}
	for i, s := range dto.Starts {
		m.starts[i] = startNode{tokens: s.Tokens, weight: s.Weight, length: s.Length, children: s.Children}
	}
	for i, n := range dto.Nodes {
		m.nodes[i] = markovNode{prev: n.Prev, token: n.Token, weight: n.Weight, length: n.Length, ending: n.Ending, children: n.Children}
	}
	m.rebuildIndexes()
	return nil
}

type grammarJSON struct {
	Subtokens    []string           `json:"subtokens"`
	MaxSubtokens []int              `json:"max_subtokens"`
	Tokens       [][]int            `json:"tokens"`
	Rules        []grammarRuleDTO   `json:"rules"`
	Results      []grammarResultDTO `json:"results"`
	TotalWeight  int                `json:"total_weight"`

	RestrictSubtokenFreq bool `json:"restrict_subtoken_frequency"`
	RestrictAdjacent     bool `json:"restrict_adjacent_subtokens"`
}

type grammarRuleDTO struct {
	Label  string `json:"label"`
	Tokens []int  `json:"tokens"`
}

type grammarResultDTO struct {
	Rules  []int `json:"rules"`
	Weight int   `json:"weight"`
}

// MarshalJSON encodes the learned model. Lookup indexes are not stored.
func (g *Grammar) MarshalJSON() ([]byte, error) {
	dto := grammarJSON{
		Subtokens:            g.subtokens,
		MaxSubtokens:         g.maxSubtokens,
		Tokens:               g.tokens,
		Rules:                make([]grammarRuleDTO, len(g.rules)),
		Results:              make([]grammarResultDTO, len(g.results)),
		TotalWeight:          g.totalWeight,
		RestrictSubtokenFreq: g.restrictSubtokenFreq,
		RestrictAdjacent:     g.restrictAdjacent,
	}
	for i, r := range g.rules {
		dto.Rules[i] = grammarRuleDTO{Label: r.label, Tokens: r.tokens}
	}
	for i, r := range g.results {
		dto.Results[i] = grammarResultDTO{Rules: r.rules, Weight: r.weight}
	}
	return json.Marshal(dto)
}

// UnmarshalJSON decodes a model and rebuilds its indexes. The result is not
// validated; call Validate before generating from untrusted data.
func (g *Grammar) UnmarshalJSON(data []byte) error {
	var dto grammarJSON
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}

	logger := g.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	*g = Grammar{
		subtokens:            dto.Subtokens,
		maxSubtokens:         dto.MaxSubtokens,
		tokens:               dto.Tokens,
		rules:                make([]tokenRule, len(dto.Rules)),
		results:              make([]resultRule, len(dto.Results)),
		totalWeight:          dto.TotalWeight,
		restrictSubtokenFreq: dto.RestrictSubtokenFreq,
		restrictAdjacent:     dto.RestrictAdjacent,
		logger:               logger,
	}
	for i, r := range dto.Rules {
		g.rules[i] = tokenRule{label: r.Label, tokens: r.Tokens}
	}
	for i, r := range dto.Results {
		g.results[i] = resultRule{rules: r.Rules, weight: r.Weight}
	}
	g.rebuildIndexes()
	return nil
}

type wordListJSON struct {
	Words []wordDTO `json:"words"`
}

type wordDTO struct {
	Word   string `json:"word"`
	Weight int    `json:"weight"`
}

// MarshalJSON encodes the list.
func (l *WordList) MarshalJSON() ([]byte, error) {
	dto := wordListJSON{Words: make([]wordDTO, len(l.words))}
	for i, w := range l.words {
		dto.Words[i] = wordDTO{Word: w.word, Weight: w.weight}
	}
	return json.Marshal(dto)
}

// UnmarshalJSON decodes a list. The total weight is recomputed from the
// entries.
func (l *WordList) UnmarshalJSON(data []byte) error {
	var dto wordListJSON
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}

	logger := l.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	*l = WordList{words: make([]wordEntry, len(dto.Words)), logger: logger}
	for i, w := range dto.Words {
		l.words[i] = wordEntry{word: w.Word, weight: w.Weight}
		l.totalWeight += w.Weight
	}
	l.rebuildIndexes()
	return nil
}

type partJSON struct {
	Name   string           `json:"name"`
	Kind   string           `json:"kind"`
	Rules  []FormattingRule `json:"rules,omitempty"`
	Engine json.RawMessage  `json:"engine"`
}

// MarshalJSON encodes the part with its engine kind so it can be decoded
// without knowing the engine in advance.
func (p *Part) MarshalJSON() ([]byte, error) {
	stats, ok := StatsOf(p.Generator)
	if !ok {
		return nil, fmt.Errorf("part %q: generator %T cannot be serialized", p.Name, p.Generator)
	}
	engine, err := json.Marshal(p.Generator)
	if err != nil {
		return nil, fmt.Errorf("part %q: %w", p.Name, err)
	}
	return json.Marshal(partJSON{Name: p.Name, Kind: stats.Kind, Rules: p.Rules, Engine: engine})
}

// UnmarshalJSON decodes a part and its engine.
func (p *Part) UnmarshalJSON(data []byte) error {
	var dto partJSON
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}

	gen, err := PartConfig{Name: dto.Name, Kind: dto.Kind}.NewGenerator()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(dto.Engine, gen); err != nil {
		return fmt.Errorf("part %q: %w", dto.Name, err)
	}

	*p = Part{Name: dto.Name, Generator: gen, Rules: dto.Rules}
	return nil
}

type nameJSON struct {
	Parts   []*Part      `json:"parts"`
	Formats []FormatInfo `json:"formats"`
}

// MarshalJSON encodes the parts and formats of the name.
func (n *Name) MarshalJSON() ([]byte, error) {
	return json.Marshal(nameJSON{Parts: n.parts, Formats: n.Formats()})
}

// UnmarshalJSON decodes a name, re-parsing its format templates.
func (n *Name) UnmarshalJSON(data []byte) error {
	var dto nameJSON
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}

	logger := n.logger
	decoded := NewName()
	if logger != nil {
		decoded.logger = logger
	}
	for _, p := range dto.Parts {
		if err := decoded.AddPart(p); err != nil {
			return err
		}
	}
	for _, f := range dto.Formats {
		if err := decoded.AddFormat(f.Name, f.Template); err != nil {
			return err
		}
	}
	*n = *decoded
	return nil
}
