package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors with a
// caller-facing message.
//
// These represent factual states about stored records, not validation failures:
// - ErrNotFound: record does not exist in the store
// - ErrDuplicate: a uniqueness rule (email, active request) was violated
// - ErrRevoked: token has been revoked
// - ErrUnavailable: backing resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrDuplicate   = errors.New("duplicate")
	ErrRevoked     = errors.New("revoked")
	ErrUnavailable = errors.New("unavailable")
)
