// Package template implements the small templating language used for
// notification content: variable substitution with dotted paths, #if and
// #unless conditionals, #each iteration, and a chain of value formatters.
//
// The engine is pure and stateless: Render performs no I/O and is
// deterministic for identical inputs. A structurally malformed body
// (unbalanced delimiters, unmatched block tags) fails with a template error,
// while a missing variable simply renders as an empty string so that partial
// contexts never break delivery.
//
// Contexts are represented as a tree of tagged values (see Value) instead of
// arbitrary dynamic objects, which keeps path lookup safe: any missing or
// mistyped segment resolves to Null.
//
// # Syntax
//
//	{{#if user.vip}}VIP{{/if}}
//	{{#unless user.verified}}Please verify your account.{{/unless}}
//	{{#each items}}{{@index}}: {{this.name}}{{/each}}
//	{{amount|currency:INR:en-IN}}
//	{{user.name|default:there|title}}
//
// Conditions support bare paths, negation with a leading !, and strict
// string comparison with === and !== against quoted literals or other paths.
// Inside an #each body the bindings this, @index, @first, and @last are
// available in a derived context.
//
// Formatters apply left-to-right: upper, lower, title, truncate:N,
// date:locale, currency:code:locale, and default:fallback. Numeric and date
// formatters never fail on unparseable input; they return the value
// unchanged.
//
// Validate statically rejects malformed bodies at template-creation time and
// ExtractVariables reports the root variables a body references, which the
// dispatch layer uses to confirm a request supplies everything a template
// declares.
package template
