// Package pg provides utilities for interacting with PostgreSQL using the
// pgx/v5 driver: connection pooling with retries, goose schema migrations,
// health checks, and common error helpers.
//
// The Postgres-backed stores in this module (the audience directory and the
// notification record store) take a *pgxpool.Pool, so a process wires them
// like this:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    log.Fatal(err)
//	}
//
//	directory := audience.NewPGDirectory(pool)
//	records := dispatch.NewPGRecordStore(pool)
//
// Healthcheck returns a func(context.Context) error closure compatible with
// standard health endpoint wiring. The Is*Error helpers classify common
// Postgres failure modes (no rows, duplicate key, foreign key violation)
// without leaking driver types into callers.
package pg
