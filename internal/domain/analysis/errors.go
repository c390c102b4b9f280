package analysis

import "errors"

// ErrMissingAPIKey indicates the provider adapter cannot be constructed
// because no credential is configured. The process keeps serving; implemented
// slots report a per-request initialization error instead.
var ErrMissingAPIKey = errors.New("provider api key is not configured")
