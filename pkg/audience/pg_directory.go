package audience

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGDirectory is a Postgres-backed Directory. It maps a Filter to a single
// SQL query against the recipients table so resolution never needs multiple
// round trips.
type PGDirectory struct {
	pool  *pgxpool.Pool
	table string
}

// PGDirectoryOption configures a PGDirectory.
type PGDirectoryOption func(*PGDirectory)

// WithTable overrides the recipients table name.
func WithTable(table string) PGDirectoryOption {
	return func(d *PGDirectory) {
		if table != "" {
			d.table = table
		}
	}
}

// NewPGDirectory creates a directory backed by the given connection pool.
func NewPGDirectory(pool *pgxpool.Pool, opts ...PGDirectoryOption) *PGDirectory {
	d := &PGDirectory{pool: pool, table: "recipients"}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *PGDirectory) Query(ctx context.Context, f Filter) ([]Recipient, error) {
	where, args := buildWhere(f)
	query := fmt.Sprintf(
		`SELECT id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(locale, ''), COALESCE(region, ''), roles, opt_ins FROM %s%s ORDER BY id`,
		d.table, where,
	)
	if f.Limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, f.Limit)
	}

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []Recipient
	for rows.Next() {
		var r Recipient
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Phone, &r.Locale, &r.Region, &r.Roles, &r.OptIns); err != nil {
			return nil, err
		}
		recipients = append(recipients, r)
	}
	return recipients, rows.Err()
}

func (d *PGDirectory) Count(ctx context.Context, f Filter) (int, error) {
	where, args := buildWhere(f)
	var n int
	err := d.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s%s", d.table, where), args...).Scan(&n)
	return n, err
}

// buildWhere renders the filter as a WHERE clause with positional args.
// List criteria use ANY/array-overlap so each dimension stays a single
// predicate.
func buildWhere(f Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if len(f.IDs) > 0 {
		add("id = ANY($%d)", f.IDs)
	}
	if len(f.Roles) > 0 {
		add("roles && $%d", f.Roles)
	}
	if len(f.Locales) > 0 {
		add("locale = ANY($%d)", f.Locales)
	}
	if len(f.Regions) > 0 {
		add("region = ANY($%d)", f.Regions)
	}
	if f.HasEmail {
		clauses = append(clauses, "email IS NOT NULL AND email <> ''")
	}
	if f.HasPhone {
		clauses = append(clauses, "phone IS NOT NULL AND phone <> ''")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
