package namegen

import (
	"errors"
	"fmt"
)

// Engine kinds accepted by PartConfig.
const (
	KindMarkov   = markovKind
	KindGrammar  = grammarKind
	KindWordList = wordListKind
)

// PartConfig describes a part and the engine behind it.
type PartConfig struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
	// Tokens are predefined Markov tokens or Grammar subtokens.
	Tokens []string `json:"tokens,omitempty" yaml:"tokens,omitempty"`

	RestrictStartLength       bool `json:"restrict_start_length,omitempty" yaml:"restrict_start_length,omitempty"`
	RestrictMiddleLength      bool `json:"restrict_middle_length,omitempty" yaml:"restrict_middle_length,omitempty"`
	RestrictEndLength         bool `json:"restrict_end_length,omitempty" yaml:"restrict_end_length,omitempty"`
	RestrictTokenFrequency    bool `json:"restrict_token_frequency,omitempty" yaml:"restrict_token_frequency,omitempty"`
	RestrictSubtokenFrequency bool `json:"restrict_subtoken_frequency,omitempty" yaml:"restrict_subtoken_frequency,omitempty"`
	RestrictAdjacentSubtokens bool `json:"restrict_adjacent_subtokens,omitempty" yaml:"restrict_adjacent_subtokens,omitempty"`

	Rules []FormattingRule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// SampleSetConfig is a sample set addressed to a part.
type SampleSetConfig struct {
	Part    string   `json:"part" yaml:"part"`
	Labels  []string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Samples []Sample `json:"samples" yaml:"samples"`
}

// NameConfig is a complete name definition: its parts, formats, and
// optionally the samples to learn.
type NameConfig struct {
	ID      string            `json:"id,omitempty" yaml:"id,omitempty"`
	Parts   []PartConfig      `json:"parts" yaml:"parts"`
	Formats []FormatInfo      `json:"formats" yaml:"formats"`
	Learn   []SampleSetConfig `json:"learn,omitempty" yaml:"learn,omitempty"`
}

// NewGenerator builds an empty engine for the config's kind.
func (c PartConfig) NewGenerator() (Generator, error) {
	switch c.Kind {
	case KindMarkov:
		return NewMarkov(
			WithTokens(c.Tokens...),
			WithStartLengthRestriction(c.RestrictStartLength),
			WithMiddleLengthRestriction(c.RestrictMiddleLength),
			WithEndLengthRestriction(c.RestrictEndLength),
			WithTokenFrequencyRestriction(c.RestrictTokenFrequency),
		), nil
	case KindGrammar:
		return NewGrammar(
			WithSubtokens(c.Tokens...),
			WithSubtokenFrequencyRestriction(c.RestrictSubtokenFrequency),
			WithAdjacentSubtokenRestriction(c.RestrictAdjacentSubtokens),
		), nil
	case KindWordList:
		return NewWordList(), nil
	default:
		return nil, fmt.Errorf("part %q: unknown kind %q", c.Name, c.Kind)
	}
}

// Build creates the part described by the config.
func (c PartConfig) Build() (*Part, error) {
	gen, err := c.NewGenerator()
	if err != nil {
		return nil, err
	}
	return NewPart(c.Name, gen, c.Rules...)
}

// SampleSet returns the config as a SampleSet.
func (c SampleSetConfig) SampleSet() *SampleSet {
	return &SampleSet{Labels: c.Labels, Samples: c.Samples}
}

// Build creates the name, adds its formats, and learns every sample set in
// order.
func (c NameConfig) Build() (*Name, error) {
	if len(c.Parts) == 0 {
		return nil, errors.New("name has no parts")
	}

	n := NewName()
	for _, pc := range c.Parts {
		p, err := pc.Build()
		if err != nil {
			return nil, err
		}
		if err := n.AddPart(p); err != nil {
			return nil, err
		}
	}
	for _, f := range c.Formats {
		if err := n.AddFormat(f.Name, f.Template); err != nil {
			return nil, err
		}
	}
	for _, sc := range c.Learn {
		if err := n.Learn(sc.Part, sc.SampleSet()); err != nil {
			return nil, fmt.Errorf("learning part %q: %w", sc.Part, err)
		}
	}
	return n, nil
}
