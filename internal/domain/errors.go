package domain

import "fmt"

// The extraction pipeline fails in exactly one of five ways. Callers branch
// on the concrete type (errors.As) to decide between degradation and
// propagation: fetch and payload-not-found failures always propagate (there
// is no safe default for "no data at all"), maintenance shape violations
// degrade to an empty list, and a broken core config degrades to a
// placeholder at the top level.

// FetchError reports an upstream HTTP failure. Unreachable distinguishes
// "never got a response" (network/timeout) from "got a non-2xx body".
type FetchError struct {
	Endpoint    string
	Status      int
	Unreachable bool
	Err         error
}

func (e *FetchError) Error() string {
	if e.Unreachable {
		return fmt.Sprintf("upstream unreachable: %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Endpoint)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PayloadNotFoundError means no locator strategy found preload data in the
// fetched HTML. Snippet holds a truncated slice of the document head and
// ScriptIDs the id attributes of the inline scripts that were scanned, so an
// operator can tell which upstream convention changed without the full page
// landing in the logs.
type PayloadNotFoundError struct {
	Endpoint  string
	Snippet   string
	ScriptIDs []string
}

func (e *PayloadNotFoundError) Error() string {
	return fmt.Sprintf("preload payload not found in %s (scripts seen: %v, head: %q)",
		e.Endpoint, e.ScriptIDs, e.Snippet)
}

// SanitizationError means the repaired payload text still failed strict JSON
// parsing. That is a sanitizer defect, not an upstream-format defect, and is
// classified separately so it shows up as our bug rather than theirs.
type SanitizationError struct {
	Snippet string
	Err     error
}

func (e *SanitizationError) Error() string {
	return fmt.Sprintf("sanitized payload still not strict JSON: %v (near %q)", e.Err, e.Snippet)
}

func (e *SanitizationError) Unwrap() error { return e.Err }

// ValidationError reports a required preload field that is missing or has the
// wrong type.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid preload data: field %q %s", e.Field, e.Reason)
}

// APIDataError reports an upstream API shape violation on non-critical data,
// e.g. a maintenance list that is not a sequence. Producers may return it
// alongside a partial result.
type APIDataError struct {
	Field  string
	Reason string
}

func (e *APIDataError) Error() string {
	return fmt.Sprintf("upstream api data: field %q %s", e.Field, e.Reason)
}
