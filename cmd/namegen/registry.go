package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/CTAG07/namegen/pkg/namegen"
	"github.com/CTAG07/namegen/pkg/store"
	"github.com/google/uuid"
)

var errInvalidDefinition = errors.New("invalid name definition")

// loadedName is a cached name. Learning holds the write lock and generating
// holds the read lock.
type loadedName struct {
	mu   sync.RWMutex
	name *namegen.Name
	info store.NameInfo
}

// PartInfo describes one part of a name.
type PartInfo struct {
	Name  string                   `json:"name"`
	Rules []namegen.FormattingRule `json:"rules,omitempty"`
	Stats namegen.Stats            `json:"stats"`
}

// NameDetails is the public view of a stored name.
type NameDetails struct {
	store.NameInfo
	Parts   []PartInfo           `json:"parts"`
	Formats []namegen.FormatInfo `json:"formats"`
}

// Registry caches names loaded from the store and serves generation from
// them.
type Registry struct {
	store  *store.Store
	logger *slog.Logger

	mu    sync.Mutex
	names map[string]*loadedName

	states sync.Pool
}

// NewRegistry creates a registry backed by s.
func NewRegistry(s *store.Store, logger *slog.Logger) *Registry {
	return &Registry{
		store:  s,
		logger: logger,
		names:  make(map[string]*loadedName),
		states: sync.Pool{New: func() any { return namegen.NewGenerationState() }},
	}
}

// load returns the cached name for id, reading it from the store on a miss.
func (r *Registry) load(ctx context.Context, id string) (*loadedName, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ln, ok := r.names[id]; ok {
		return ln, nil
	}
	name, info, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name.SetLogger(r.logger.With(slog.String("name_id", id)))
	ln := &loadedName{name: name, info: info}
	r.names[id] = ln
	r.logger.Debug("Loaded name from store", "name_id", id, "version", info.Version)
	return ln, nil
}

func (r *Registry) evict(id string) {
	r.mu.Lock()
	delete(r.names, id)
	r.mu.Unlock()
}

// List returns the metadata of every stored name.
func (r *Registry) List(ctx context.Context) ([]store.NameInfo, error) {
	return r.store.List(ctx)
}

// Create builds the name described by config and stores it. An empty id is
// replaced with a random one.
func (r *Registry) Create(ctx context.Context, config namegen.NameConfig) (NameDetails, error) {
	if config.ID == "" {
		config.ID = uuid.NewString()
	}
	if strings.ContainsRune(config.ID, '/') {
		return NameDetails{}, fmt.Errorf("%w: id %q contains '/'", errInvalidDefinition, config.ID)
	}
	name, err := config.Build()
	if err != nil {
		var lerr *namegen.LearnError
		if errors.As(err, &lerr) {
			return NameDetails{}, err
		}
		return NameDetails{}, fmt.Errorf("%w: %w", errInvalidDefinition, err)
	}
	info, err := r.store.Create(ctx, config.ID, name)
	if err != nil {
		return NameDetails{}, err
	}
	name.SetLogger(r.logger.With(slog.String("name_id", config.ID)))

	r.mu.Lock()
	r.names[config.ID] = &loadedName{name: name, info: info}
	r.mu.Unlock()
	r.logger.Info("Created name", "name_id", config.ID, "parts", len(config.Parts))
	return describe(name, info), nil
}

// Describe returns the details of the name with the given id.
func (r *Registry) Describe(ctx context.Context, id string) (NameDetails, error) {
	ln, err := r.load(ctx, id)
	if err != nil {
		return NameDetails{}, err
	}
	ln.mu.RLock()
	defer ln.mu.RUnlock()
	return describe(ln.name, ln.info), nil
}

// Delete removes a name from the store and the cache.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(id)
	r.logger.Info("Deleted name", "name_id", id)
	return nil
}

// Generate produces amount names with the given format. The random source is
// seeded with seed, so equal requests against an unchanged name return equal
// results.
func (r *Registry) Generate(ctx context.Context, id, format string, amount int, seed uint64) ([]string, error) {
	ln, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}

	state := r.states.Get().(*namegen.GenerationState)
	defer r.states.Put(state)
	rng := namegen.NewRand(seed)

	ln.mu.RLock()
	defer ln.mu.RUnlock()

	names := make([]string, 0, amount)
	for range amount {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		s, err := ln.name.Generate(state, rng, format)
		if err != nil {
			return nil, err
		}
		names = append(names, strings.Clone(s))
	}
	return names, nil
}

// Learn teaches a sample set to one part of the name and stores the result.
func (r *Registry) Learn(ctx context.Context, id string, set namegen.SampleSetConfig) (NameDetails, error) {
	return r.modify(ctx, id, func(name *namegen.Name) error {
		return name.Learn(set.Part, set.SampleSet())
	})
}

// AddFormat adds a format to the name and stores the result.
func (r *Registry) AddFormat(ctx context.Context, id string, format namegen.FormatInfo) (NameDetails, error) {
	return r.modify(ctx, id, func(name *namegen.Name) error {
		err := name.AddFormat(format.Name, format.Template)
		if err != nil && !errors.Is(err, namegen.ErrDuplicateFormat) {
			return fmt.Errorf("%w: %w", errInvalidDefinition, err)
		}
		return err
	})
}

// modify applies fn to a copy of the cached name, stores the copy, and only
// then swaps it in. A failure at any step leaves the cached name untouched.
func (r *Registry) modify(ctx context.Context, id string, fn func(*namegen.Name) error) (NameDetails, error) {
	ln, err := r.load(ctx, id)
	if err != nil {
		return NameDetails{}, err
	}

	ln.mu.Lock()
	defer ln.mu.Unlock()

	name, err := copyName(ln.name)
	if err != nil {
		return NameDetails{}, err
	}
	if err = fn(name); err != nil {
		return NameDetails{}, err
	}
	info, err := r.store.Update(ctx, id, ln.info.Version, name)
	if err != nil {
		if errors.Is(err, store.ErrVersionConflict) || errors.Is(err, store.ErrNameNotFound) {
			// Changed or removed by someone else; reload on next access.
			r.evict(id)
		}
		return NameDetails{}, err
	}
	name.SetLogger(r.logger.With(slog.String("name_id", id)))
	ln.name = name
	ln.info = info
	r.logger.Debug("Updated name", "name_id", id, "version", info.Version)
	return describe(name, info), nil
}

func copyName(n *namegen.Name) (*namegen.Name, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to copy name: %w", err)
	}
	c := namegen.NewName()
	if err = json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to copy name: %w", err)
	}
	return c, nil
}

func describe(name *namegen.Name, info store.NameInfo) NameDetails {
	parts := name.Parts()
	d := NameDetails{
		NameInfo: info,
		Parts:    make([]PartInfo, 0, len(parts)),
		Formats:  name.Formats(),
	}
	for _, p := range parts {
		stats, _ := p.Stats()
		d.Parts = append(d.Parts, PartInfo{Name: p.Name, Rules: p.Rules, Stats: stats})
	}
	return d
}
