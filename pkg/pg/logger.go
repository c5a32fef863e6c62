package pg

import "context"

// logger is the slice of slog's surface the migration runner needs, so goose
// output lands in the application log instead of stderr.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
