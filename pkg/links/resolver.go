package links

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-kontakt/pkg/schema"
)

// CandidateSource fetches the entities belonging to a target template as
// {id, display_name} pairs. *store.Client satisfies this.
type CandidateSource interface {
	CandidatesByTemplate(ctx context.Context, templateID int64) ([]schema.Candidate, error)
}

// Option customises the resolver.
type Option func(*Resolver)

// WithLogger injects a structured logger used to record isolated per-property
// fetch failures. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithConcurrency caps the number of candidate fetches in flight at once.
// Zero or negative means unlimited.
func WithConcurrency(limit int) Option {
	return func(r *Resolver) {
		r.limit = limit
	}
}

// Resolver discovers the Link properties of a template and fetches the
// candidate list for each. Results are keyed by property id, which is stable
// across template versions; callers discard the whole result and re-resolve
// when the owning template reference changes.
type Resolver struct {
	source CandidateSource
	logger *zap.Logger
	limit  int
}

// NewResolver constructs a resolver over the given candidate source.
func NewResolver(source CandidateSource, options ...Option) *Resolver {
	r := &Resolver{
		source: source,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Resolve fetches candidates for every Link property of the template,
// concurrently and without ordering between properties. Resolution is
// per-property, not transactional: a failed fetch or an unparsable link
// target stores an empty list for that property and never aborts siblings.
func (r *Resolver) Resolve(ctx context.Context, tpl schema.Template) map[int64][]schema.Candidate {
	out := make(map[int64][]schema.Candidate)
	if r.source == nil {
		return out
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	if r.limit > 0 {
		group.SetLimit(r.limit)
	}

	for _, prop := range tpl.LinkProperties() {
		prop := prop

		targetID, ok := prop.LinkTarget()
		if !ok {
			r.logger.Warn("link property has no parsable target",
				zap.Int64("property_id", prop.ID),
				zap.String("property", prop.Name),
				zap.String("options", prop.Options))
			mu.Lock()
			out[prop.ID] = []schema.Candidate{}
			mu.Unlock()
			continue
		}

		group.Go(func() error {
			candidates, err := r.source.CandidatesByTemplate(groupCtx, targetID)
			if err != nil {
				r.logger.Warn("candidate fetch failed",
					zap.Int64("property_id", prop.ID),
					zap.String("property", prop.Name),
					zap.Int64("target_template_id", targetID),
					zap.Error(err))
				candidates = nil
			}
			if candidates == nil {
				candidates = []schema.Candidate{}
			}
			mu.Lock()
			out[prop.ID] = candidates
			mu.Unlock()
			return nil
		})
	}

	// Goroutines never return errors; failures are isolated above.
	_ = group.Wait()
	return out
}

// Filter returns the candidates whose display name contains the query,
// compared case-insensitively. The input slice is never mutated and its order
// is preserved; a blank query returns a copy of the full list.
func Filter(candidates []schema.Candidate, query string) []schema.Candidate {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]schema.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if query == "" || strings.Contains(strings.ToLower(candidate.DisplayName), query) {
			out = append(out, candidate)
		}
	}
	return out
}
