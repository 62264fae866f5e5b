package namegen

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

var (
	// ErrFormatNotFound is returned when generating with an unknown format.
	ErrFormatNotFound = errors.New("format not found")
	// ErrDuplicatePart is returned when a part name is already taken.
	ErrDuplicatePart = errors.New("part already exists")
	// ErrDuplicateFormat is returned when a format name is already taken.
	ErrDuplicateFormat = errors.New("format already exists")
)

// Name composes several parts into full names using format templates, for
// example "{first} {last}|{first} {=of} {place}".
type Name struct {
	parts       []*Part
	partIndex   map[string]int
	formats     []format
	formatIndex map[string]int

	logger *slog.Logger
}

// FormatInfo describes a format of a Name.
type FormatInfo struct {
	Name     string `json:"name" yaml:"name"`
	Template string `json:"template" yaml:"template"`
}

// NewName creates a Name with no parts or formats.
func NewName() *Name {
	return &Name{
		partIndex:   make(map[string]int),
		formatIndex: make(map[string]int),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the name and for every part generator that
// accepts one. By default, all logs are discarded.
func (n *Name) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	n.logger = logger
	for _, p := range n.parts {
		if l, ok := p.Generator.(interface{ SetLogger(*slog.Logger) }); ok {
			l.SetLogger(logger.With(slog.String("part", p.Name)))
		}
	}
}

// AddPart adds a part. Part names must be unique.
func (n *Name) AddPart(p *Part) error {
	if p == nil || p.Name == "" {
		return errors.New("part must have a name")
	}
	if _, ok := n.partIndex[p.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicatePart, p.Name)
	}
	if l, ok := p.Generator.(interface{ SetLogger(*slog.Logger) }); ok {
		l.SetLogger(n.logger.With(slog.String("part", p.Name)))
	}
	n.partIndex[p.Name] = len(n.parts)
	n.parts = append(n.parts, p)
	return nil
}

// AddFormat parses template and adds it under name. Templates may refer to
// any part and to formats added before them.
func (n *Name) AddFormat(name, template string) error {
	if name == "" {
		return errors.New("format must have a name")
	}
	if _, ok := n.formatIndex[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateFormat, name)
	}

	alternatives, err := parseTemplate(template, n.lookupPart, n.lookupFormat)
	if err != nil {
		return fmt.Errorf("format %q: %w", name, err)
	}

	n.formatIndex[name] = len(n.formats)
	n.formats = append(n.formats, format{name: name, template: template, alternatives: alternatives})
	n.logger.Debug("Format added", slog.String("format", name), slog.String("template", template))
	return nil
}

func (n *Name) lookupPart(name string) (int, bool) {
	i, ok := n.partIndex[name]
	return i, ok
}

func (n *Name) lookupFormat(name string) (int, bool) {
	i, ok := n.formatIndex[name]
	return i, ok
}

// Part returns the named part.
func (n *Name) Part(name string) (*Part, bool) {
	i, ok := n.partIndex[name]
	if !ok {
		return nil, false
	}
	return n.parts[i], true
}

// Parts returns the parts in the order they were added.
func (n *Name) Parts() []*Part {
	return append([]*Part(nil), n.parts...)
}

// Formats returns the formats in the order they were added.
func (n *Name) Formats() []FormatInfo {
	infos := make([]FormatInfo, len(n.formats))
	for i, f := range n.formats {
		infos[i] = FormatInfo{Name: f.name, Template: f.template}
	}
	return infos
}

// Learn teaches set to the named part.
func (n *Name) Learn(part string, set *SampleSet) error {
	p, ok := n.Part(part)
	if !ok {
		return newLearnError(PartNotFound, nil, "part %q not found", part)
	}
	if err := p.Learn(set); err != nil {
		return err
	}
	if set != nil {
		n.logger.Debug("Part learned", slog.String("part", part), slog.Int("samples", len(set.Samples)))
	}
	return nil
}

// Generate composes one name in the given format into state's total buffer.
// An empty format selects the first one added. The returned view is only
// valid until state is used again.
func (n *Name) Generate(state *GenerationState, rng Rand, format string) (string, error) {
	fi := 0
	if format != "" {
		var ok bool
		if fi, ok = n.formatIndex[format]; !ok {
			return "", fmt.Errorf("%w: %q", ErrFormatNotFound, format)
		}
	} else if len(n.formats) == 0 {
		return "", fmt.Errorf("%w: name has no formats", ErrFormatNotFound)
	}

	state.total = state.total[:0]
	n.render(state, rng, fi)
	return state.Total(), nil
}

func (n *Name) render(state *GenerationState, rng Rand, fi int) {
	f := &n.formats[fi]
	alt := f.alternatives[0]
	if len(f.alternatives) > 1 {
		alt = f.alternatives[rng.IntN(len(f.alternatives))]
	}

	for _, item := range alt {
		switch item.kind {
		case itemText:
			state.total = append(state.total, item.text...)
		case itemPart:
			n.parts[item.ref].Generate(state, rng)
			state.total = append(state.total, state.out...)
		case itemFormat:
			n.render(state, rng, item.ref)
		}
	}
}

// Validate checks every part and every format reference.
func (n *Name) Validate() error {
	for _, p := range n.parts {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	for i, f := range n.formats {
		if len(f.alternatives) == 0 {
			return newValidationError("format", "format has no alternatives").WithName(f.name)
		}
		for _, alt := range f.alternatives {
			for _, item := range alt {
				switch {
				case item.kind == itemPart && (item.ref < 0 || item.ref >= len(n.parts)):
					return newValidationError("format", "refers to missing part %d", item.ref).WithName(f.name)
				case item.kind == itemFormat && (item.ref < 0 || item.ref >= i):
					return newValidationError("format", "refers to format %d that is not defined before it", item.ref).WithName(f.name)
				}
			}
		}
	}
	return nil
}

// NameGenerator yields names from a Name with its own state and seeded
// random source.
type NameGenerator struct {
	name   *Name
	format string
	state  *GenerationState
	rng    Rand
}

// Generator returns a NameGenerator for format seeded with seed. The same
// seed produces the same sequence of names.
func (n *Name) Generator(seed uint64, format string) *NameGenerator {
	return &NameGenerator{
		name:   n,
		format: format,
		state:  NewGenerationState(),
		rng:    NewRand(seed),
	}
}

// Next returns the next name. The string is only valid until the next call.
func (g *NameGenerator) Next() (string, error) {
	return g.name.Generate(g.state, g.rng, g.format)
}

// Take returns the next count names as independent strings.
func (g *NameGenerator) Take(count int) ([]string, error) {
	names := make([]string, 0, max(count, 0))
	for range count {
		s, err := g.Next()
		if err != nil {
			return nil, err
		}
		names = append(names, strings.Clone(s))
	}
	return names, nil
}
