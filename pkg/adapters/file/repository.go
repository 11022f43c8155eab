package file

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
)

// StateMetadata is the front matter of one state document in a graph directory.
// The state name defaults to the file name without its extension.
type StateMetadata struct {
	ID       string   `json:"id" mapstructure:"id"`
	Next     []string `json:"next" mapstructure:"next"`
	Initial  bool     `json:"initial" mapstructure:"initial"`
	Terminal bool     `json:"terminal" mapstructure:"terminal"`
}

// DefaultInitial is used when no state document sets `initial: true`.
const DefaultInitial = "start"

// LoadDir reads a graph stored as one document per state, for example a
// start.md whose front matter is
//
//	---
//	initial: true
//	next: [analyzing]
//	---
//
// The directory is opened read-only.
func LoadDir(path string) (domain.GraphConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return domain.GraphConfig{}, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return domain.GraphConfig{}, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return LoadRepository(context.Background(), repo)
}

// LoadRepository builds a GraphConfig from every document in repo.
// It does not validate the graph; fsm.New does.
func LoadRepository(ctx context.Context, repo core.Repository) (domain.GraphConfig, error) {
	typed := loam.NewTypedRepository[StateMetadata](repo)
	docs, err := typed.List(ctx)
	if err != nil {
		return domain.GraphConfig{}, fmt.Errorf("loam list failed: %w", err)
	}

	cfg := domain.GraphConfig{States: map[string][]string{}}
	seen := make(map[string]string, len(docs))
	var initials []string

	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existing, ok := seen[id]; ok {
			return domain.GraphConfig{}, &domain.ConfigurationError{
				Problems: []string{fmt.Sprintf("state %q is defined in both %q and %q", id, existing, doc.ID)},
			}
		}
		seen[id] = doc.ID

		next := make([]string, 0, len(doc.Data.Next))
		for _, target := range doc.Data.Next {
			next = append(next, trimExtension(target))
		}
		cfg.States[id] = next

		if doc.Data.Initial {
			initials = append(initials, id)
		}
		if doc.Data.Terminal {
			cfg.Terminal = append(cfg.Terminal, id)
		}
	}
	sort.Strings(cfg.Terminal)

	switch len(initials) {
	case 0:
		cfg.Initial = DefaultInitial
	case 1:
		cfg.Initial = initials[0]
	default:
		sort.Strings(initials)
		return domain.GraphConfig{}, &domain.ConfigurationError{
			Problems: []string{fmt.Sprintf("more than one initial state: %s", strings.Join(initials, ", "))},
		}
	}
	return cfg, nil
}

func trimExtension(id string) string {
	if ext := filepath.Ext(id); ext != "" {
		id = strings.TrimSuffix(id, ext)
	}
	return filepath.ToSlash(id)
}
