// Package channel implements the uniform send contract for every delivery
// medium: email, SMS, chat-app messaging, and browser push.
//
// Every adapter follows the same shape. Before touching a transport it
// confirms the recipient has the required contact method (NO_EMAIL,
// NO_PHONE, NO_SUBSCRIPTION), normalizes and validates it (INVALID_PHONE),
// renders the template body and subject through a merged context of request
// variables plus the standard user.*, app.*, and date.now bindings, and
// enforces channel size limits. Overlength SMS bodies are flagged with their
// segment count and sent anyway; push title and body caps are hard failures.
//
// Send never returns a Go error. Each failure mode is folded into the
// returned SendResult with a channel-specific error code, which is what lets
// the dispatch layer contain one recipient's failure without aborting a
// batch.
//
// When a channel's provider credentials are not configured the adapter
// swaps in a deterministic simulator: a fixed artificial delay and a
// synthesized message id. This keeps the full pipeline exercisable in
// development without provider accounts.
//
// Delivery-status polling is the optional StatusChecker capability,
// discovered by type assertion. It is best-effort: any transport problem
// reports pending rather than an error.
package channel
