// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// New builds a *slog.Logger from options:
//
//	log := logger.New(
//	    logger.WithProduction("notifykit"),
//	    logger.WithContextValue("request_id", requestIDKey),
//	)
//	logger.SetAsDefault(log)
//
// WithDevelopment, WithStaging and WithProduction set sensible per-environment
// defaults (format, level, service attributes). Context extractors registered
// through WithContextExtractors or WithContextValue run on every log call, so
// request-scoped values stay fresh.
//
// The attribute constructors (Error, NotificationID, TemplateID, RecipientID,
// ChannelName, MessageID and friends) standardise key names across the
// module's packages so log aggregation can filter on them reliably.
package logger
