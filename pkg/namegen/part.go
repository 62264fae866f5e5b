package namegen

import (
	"errors"
	"fmt"
)

// Part is a named generator whose output is post-processed by formatting
// rules, such as the first or last name of a character.
type Part struct {
	Name      string
	Generator Generator
	Rules     []FormattingRule
}

// NewPart creates a part. The rules are checked immediately.
func NewPart(name string, gen Generator, rules ...FormattingRule) (*Part, error) {
	if name == "" {
		return nil, errors.New("part name is empty")
	}
	if gen == nil {
		return nil, fmt.Errorf("part %q has no generator", name)
	}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("part %q: %w", name, err)
		}
	}
	return &Part{Name: name, Generator: gen, Rules: rules}, nil
}

// Learn passes set to the part's generator.
func (p *Part) Learn(set *SampleSet) error {
	return p.Generator.Learn(set)
}

// Generate writes a formatted result into state and returns a view of it.
func (p *Part) Generate(state *GenerationState, rng Rand) string {
	p.Generator.Generate(state, rng)
	applyRules(p.Rules, state)
	return state.Result()
}

// Validate checks the generator and the rules, attributing any failure to
// the part.
func (p *Part) Validate() error {
	for _, r := range p.Rules {
		if err := r.Validate(); err != nil {
			return newValidationError("part", "%v", err).WithName(p.Name)
		}
	}
	if err := p.Generator.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return verr.WithName(p.Name)
		}
		return fmt.Errorf("part %q: %w", p.Name, err)
	}
	return nil
}

// Stats returns the stats of the part's generator.
func (p *Part) Stats() (Stats, bool) {
	return StatsOf(p.Generator)
}
