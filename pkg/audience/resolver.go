package audience

import (
	"context"
	"errors"
	"log/slog"
)

// Filter is the single query shape understood by a Directory. All criteria
// are optional and combine with AND semantics; list criteria are ANY-of.
type Filter struct {
	IDs      []string
	Roles    []string
	Locales  []string
	Regions  []string
	HasEmail bool
	HasPhone bool

	// Limit caps the number of returned recipients; zero means no cap.
	Limit int
}

// Directory is the read-only user-directory collaborator. Implementations
// guarantee recipient uniqueness by id, so the resolver does not run a
// second dedup pass.
type Directory interface {
	Query(ctx context.Context, f Filter) ([]Recipient, error)
	Count(ctx context.Context, f Filter) (int, error)
}

// Resolver turns audience descriptors into concrete recipient lists with a
// single directory round trip per call.
type Resolver struct {
	dir Directory
	log *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// NewResolver creates a resolver backed by the given directory.
func NewResolver(dir Directory, opts ...ResolverOption) *Resolver {
	r := &Resolver{dir: dir, log: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the full recipient list for a descriptor.
func (r *Resolver) Resolve(ctx context.Context, d Descriptor) ([]Recipient, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	recipients, err := r.dir.Query(ctx, d.filter())
	if err != nil {
		return nil, errors.Join(ErrDirectoryUnavailable, err)
	}
	r.log.DebugContext(ctx, "audience resolved",
		slog.String("audience_type", string(d.Type)),
		slog.Int("recipient_count", len(recipients)),
	)
	return recipients, nil
}

// EstimateSize returns the number of recipients a descriptor would resolve
// to, without materializing the list.
func (r *Resolver) EstimateSize(ctx context.Context, d Descriptor) (int, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	n, err := r.dir.Count(ctx, d.filter())
	if err != nil {
		return 0, errors.Join(ErrDirectoryUnavailable, err)
	}
	return n, nil
}

// Preview returns at most limit recipients matching the descriptor.
func (r *Resolver) Preview(ctx context.Context, d Descriptor, limit int) ([]Recipient, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	f := d.filter()
	f.Limit = limit
	recipients, err := r.dir.Query(ctx, f)
	if err != nil {
		return nil, errors.Join(ErrDirectoryUnavailable, err)
	}
	return recipients, nil
}

// Validate structurally checks a descriptor without touching the directory.
func (r *Resolver) Validate(d Descriptor) error {
	return d.Validate()
}
