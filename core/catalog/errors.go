package catalog

import "errors"

// Error taxonomy for the cache/sync engine. StaleSnapshot is a normal
// refetch signal rather than a failure; ReconciliationMismatch means the
// post-sync working set size differs from the authoritative count.
var (
	ErrStorageUnavailable     = errors.New("snapshot storage unavailable")
	ErrStaleSnapshot          = errors.New("snapshot stale")
	ErrRemoteUnavailable      = errors.New("remote record store unavailable")
	ErrReconciliationMismatch = errors.New("working set does not match authoritative count")
	ErrParseFailure           = errors.New("candidate record could not be parsed")
	ErrSyncInFlight           = errors.New("sync already running")
)
