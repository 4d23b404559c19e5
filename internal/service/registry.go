package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"

	fotel "github.com/intent-solutions/foreman/internal/adapter/otel"
	"github.com/intent-solutions/foreman/internal/domain/delegation"
	"github.com/intent-solutions/foreman/internal/port/cardsource"
)

// Registry loads, caches, and exposes capability descriptors for all
// configured specialists. The cached map is an immutable snapshot shared
// by all readers; Reload installs a replacement atomically, so readers
// never observe a partially updated map.
type Registry struct {
	sources []cardsource.Source
	// strict aborts discovery on any malformed descriptor instead of
	// skip-and-warn. On a strict failure the previous snapshot stays live.
	strict bool

	cards atomic.Pointer[map[string]delegation.AgentCard]
}

// NewRegistry creates a Registry over the given descriptor sources.
// Call Discover (or Reload) before serving lookups.
func NewRegistry(strict bool, sources ...cardsource.Source) *Registry {
	r := &Registry{sources: sources, strict: strict}
	empty := map[string]delegation.AgentCard{}
	r.cards.Store(&empty)
	return r
}

// Discover enumerates all sources, validates each descriptor, and installs
// the resulting map as the live snapshot. A descriptor that fails load-time
// validation is excluded and logged at WARN unless strict mode is on, in
// which case Discover returns an error and the previous snapshot is kept.
func (r *Registry) Discover(ctx context.Context) (map[string]delegation.AgentCard, error) {
	ctx, span := fotel.StartDiscoverySpan(ctx)
	defer span.End()

	next := make(map[string]delegation.AgentCard)

	for _, src := range r.sources {
		cards, warns, err := src.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load descriptor source: %w", err)
		}
		for _, warn := range warns {
			if r.strict {
				return nil, fmt.Errorf("strict discovery: %w", warn)
			}
			slog.Warn("descriptor skipped", "error", warn)
		}

		for i := range cards {
			card := cards[i]
			if err := card.Validate(); err != nil {
				if r.strict {
					return nil, fmt.Errorf("strict discovery: descriptor %q: %w", card.Name, err)
				}
				slog.Warn("malformed descriptor excluded", "specialist", card.Name, "error", err)
				continue
			}
			if _, dup := next[card.Name]; dup {
				slog.Warn("duplicate descriptor ignored", "specialist", card.Name)
				continue
			}
			next[card.Name] = card
		}
	}

	r.cards.Store(&next)
	slog.Info("specialist discovery complete", "specialists", len(next))
	return next, nil
}

// Reload re-runs discovery, atomically replacing the cached map.
func (r *Registry) Reload(ctx context.Context) error {
	_, err := r.Discover(ctx)
	return err
}

// Get returns the descriptor for the named specialist.
// Returns *delegation.SpecialistNotFoundError if absent or excluded.
func (r *Registry) Get(name string) (delegation.AgentCard, error) {
	snapshot := *r.cards.Load()
	card, ok := snapshot[name]
	if !ok {
		return delegation.AgentCard{}, &delegation.SpecialistNotFoundError{Specialist: name}
	}
	return card, nil
}

// List returns all registered descriptors sorted by specialist name.
func (r *Registry) List() []delegation.AgentCard {
	snapshot := *r.cards.Load()
	cards := make([]delegation.AgentCard, 0, len(snapshot))
	for _, card := range snapshot {
		cards = append(cards, card)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Name < cards[j].Name })
	return cards
}

// Len returns the number of registered specialists.
func (r *Registry) Len() int {
	return len(*r.cards.Load())
}
