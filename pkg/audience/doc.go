// Package audience resolves declarative audience descriptors into concrete,
// deduplicated recipient lists.
//
// A Descriptor is a tagged variant: TypeAll targets every eligible recipient,
// TypeRole targets holders of any of a set of roles, and TypeCustom combines
// an id allowlist, roles, locales, ward/region codes, and contact-method
// requirements. Criteria AND across dimensions and OR within a dimension's
// list.
//
// The Resolver translates a descriptor into exactly one query against a
// Directory collaborator. Descriptor validation is pure and never touches
// the directory, so invalid shapes (for example a role audience with no
// roles) are rejected before any I/O.
//
// Two Directory implementations ship with the package: MemoryDirectory for
// development and tests, and PGDirectory backed by a pgx connection pool.
package audience
