// Package cardfs implements the descriptor source port over a directory
// of capability descriptor JSON files, one file per specialist.
package cardfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/intent-solutions/foreman/internal/domain/delegation"
)

// Source loads agent cards from *.json files in a directory.
type Source struct {
	dir string
}

// New creates a Source over the given directory.
func New(dir string) *Source {
	return &Source{dir: dir}
}

// Load reads every *.json file in the directory. Files that cannot be read
// or parsed are returned as warnings; card-level validation is left to the
// registry's discovery policy. A missing directory is a source-level error.
func (s *Source) Load(ctx context.Context) ([]delegation.AgentCard, []error, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read card dir %s: %w", s.dir, err)
	}

	var cards []delegation.AgentCard
	var warns []error

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the configured card dir
		if err != nil {
			warns = append(warns, fmt.Errorf("read %s: %w", path, err))
			continue
		}

		var card delegation.AgentCard
		if err := json.Unmarshal(data, &card); err != nil {
			warns = append(warns, fmt.Errorf("parse %s: %w", path, err))
			continue
		}
		cards = append(cards, card)
	}

	return cards, warns, nil
}
