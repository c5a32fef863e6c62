package audience_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/audience"
)

func seedDirectory() *audience.MemoryDirectory {
	dir := audience.NewMemoryDirectory()
	dir.Add(
		audience.Recipient{ID: "u1", Name: "Asha", Email: "asha@example.com", Phone: "919876543210", Locale: "en-IN", Region: "ward-7", Roles: []string{"admin"}},
		audience.Recipient{ID: "u2", Name: "Ravi", Email: "ravi@example.com", Locale: "hi-IN", Region: "ward-3", Roles: []string{"staff"}},
		audience.Recipient{ID: "u3", Name: "Meera", Phone: "918765432109", Locale: "en-IN", Region: "ward-7", Roles: []string{"staff", "moderator"}},
		audience.Recipient{ID: "u4", Name: "John", Email: "john@example.com", Phone: "14155552671", Locale: "en-US", Roles: nil},
	)
	return dir
}

func TestResolverResolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	resolver := audience.NewResolver(seedDirectory())

	tests := []struct {
		name    string
		desc    audience.Descriptor
		wantIDs []string
	}{
		{
			name:    "all recipients",
			desc:    audience.All(),
			wantIDs: []string{"u1", "u2", "u3", "u4"},
		},
		{
			name:    "any of roles",
			desc:    audience.Role("staff", "moderator"),
			wantIDs: []string{"u2", "u3"},
		},
		{
			name: "custom id allowlist",
			desc: audience.Descriptor{Type: audience.TypeCustom, IDs: []string{"u1", "u4"}},

			wantIDs: []string{"u1", "u4"},
		},
		{
			name:    "locale and phone requirement AND together",
			desc:    audience.Descriptor{Type: audience.TypeCustom, Locales: []string{"en-IN"}, HasPhone: true},
			wantIDs: []string{"u1", "u3"},
		},
		{
			name:    "region allowlist",
			desc:    audience.Descriptor{Type: audience.TypeCustom, Regions: []string{"ward-7"}},
			wantIDs: []string{"u1", "u3"},
		},
		{
			name:    "roles AND email",
			desc:    audience.Descriptor{Type: audience.TypeCustom, Roles: []string{"staff"}, HasEmail: true},
			wantIDs: []string{"u2"},
		},
		{
			name:    "no matches yields empty list",
			desc:    audience.Descriptor{Type: audience.TypeCustom, Locales: []string{"fr-FR"}},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := resolver.Resolve(ctx, tt.desc)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestResolverValidate(t *testing.T) {
	t.Parallel()

	resolver := audience.NewResolver(seedDirectory())

	t.Run("role without roles fails before any query", func(t *testing.T) {
		t.Parallel()
		err := resolver.Validate(audience.Descriptor{Type: audience.TypeRole})
		assert.ErrorIs(t, err, audience.ErrInvalidDescriptor)
	})

	t.Run("unknown type fails", func(t *testing.T) {
		t.Parallel()
		err := resolver.Validate(audience.Descriptor{Type: "everyone"})
		assert.ErrorIs(t, err, audience.ErrInvalidDescriptor)
	})

	t.Run("missing type fails", func(t *testing.T) {
		t.Parallel()
		err := resolver.Validate(audience.Descriptor{})
		assert.ErrorIs(t, err, audience.ErrInvalidDescriptor)
	})

	t.Run("empty id in allowlist fails", func(t *testing.T) {
		t.Parallel()
		err := resolver.Validate(audience.Descriptor{Type: audience.TypeCustom, IDs: []string{"u1", ""}})
		assert.ErrorIs(t, err, audience.ErrInvalidDescriptor)
	})

	t.Run("resolve rejects invalid descriptor without touching directory", func(t *testing.T) {
		t.Parallel()
		dir := &failingDirectory{}
		r := audience.NewResolver(dir)
		_, err := r.Resolve(context.Background(), audience.Descriptor{Type: audience.TypeRole})
		assert.ErrorIs(t, err, audience.ErrInvalidDescriptor)
		assert.Zero(t, dir.queries)
	})
}

func TestResolverEstimateAndPreview(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	resolver := audience.NewResolver(seedDirectory())

	n, err := resolver.EstimateSize(ctx, audience.All())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	preview, err := resolver.Preview(ctx, audience.All(), 2)
	require.NoError(t, err)
	assert.Len(t, preview, 2)
}

func TestResolverDirectoryFailure(t *testing.T) {
	t.Parallel()

	resolver := audience.NewResolver(&failingDirectory{})
	_, err := resolver.Resolve(context.Background(), audience.All())
	assert.ErrorIs(t, err, audience.ErrDirectoryUnavailable)
}

// failingDirectory counts queries and always errors.
type failingDirectory struct {
	queries int
}

func (d *failingDirectory) Query(ctx context.Context, f audience.Filter) ([]audience.Recipient, error) {
	d.queries++
	return nil, errors.New("connection refused")
}

func (d *failingDirectory) Count(ctx context.Context, f audience.Filter) (int, error) {
	d.queries++
	return 0, errors.New("connection refused")
}
