// Package cardhttp implements the descriptor source port over HTTP:
// each specialist base URL serves its capability descriptor on the
// well-known agent card path. Fetched cards are cached in-process with a
// TTL so registry reloads do not hammer specialist endpoints.
package cardhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/intent-solutions/foreman/internal/domain/delegation"
)

// WellKnownPath is the card location relative to a specialist base URL.
const WellKnownPath = "/.well-known/agent-card.json"

// Source fetches agent cards from remote specialist endpoints.
type Source struct {
	baseURLs []string
	client   *http.Client
	cache    *ristretto.Cache[string, []byte]
	ttl      time.Duration
}

// New creates a Source over the given specialist base URLs.
// maxCostBytes bounds the total size of cached card bodies.
func New(baseURLs []string, timeout, ttl time.Duration, maxCostBytes int64) (*Source, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10, // ~10x expected items
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("card cache: %w", err)
	}

	return &Source{
		baseURLs: baseURLs,
		client:   &http.Client{Timeout: timeout},
		cache:    cache,
		ttl:      ttl,
	}, nil
}

// Load fetches the card from every configured base URL. Unreachable or
// undecodable endpoints become warnings so one flaky specialist never
// blocks discovery of the others.
func (s *Source) Load(ctx context.Context) ([]delegation.AgentCard, []error, error) {
	var cards []delegation.AgentCard
	var warns []error

	for _, base := range s.baseURLs {
		card, err := s.fetch(ctx, base)
		if err != nil {
			warns = append(warns, fmt.Errorf("specialist at %s: %w", base, err))
			continue
		}
		cards = append(cards, card)
	}

	return cards, warns, nil
}

// Close releases the cache.
func (s *Source) Close() {
	s.cache.Close()
}

func (s *Source) fetch(ctx context.Context, base string) (delegation.AgentCard, error) {
	url := strings.TrimRight(base, "/") + WellKnownPath

	if data, ok := s.cache.Get(url); ok {
		var card delegation.AgentCard
		if err := json.Unmarshal(data, &card); err == nil {
			return card, nil
		}
		// Corrupt cache entry; fall through to refetch.
		s.cache.Del(url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return delegation.AgentCard{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return delegation.AgentCard{}, fmt.Errorf("fetch card: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return delegation.AgentCard{}, fmt.Errorf("fetch card: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return delegation.AgentCard{}, fmt.Errorf("read card: %w", err)
	}

	var card delegation.AgentCard
	if err := json.Unmarshal(data, &card); err != nil {
		return delegation.AgentCard{}, fmt.Errorf("decode card: %w", err)
	}

	s.cache.SetWithTTL(url, data, int64(len(data)), s.ttl)
	return card, nil
}
