package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors with the right
// code and a caller-safe message.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: row or key does not exist in the store
// - ErrConflict: insert or revoke raced an existing row
// - ErrExpired: session passed its expiry
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrExpired  = errors.New("expired")
)
