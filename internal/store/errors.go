package store

import (
	"errors"
	"fmt"
)

// The store distinguishes three failure families. Connectivity failures
// flip the session OFFLINE; size-limit failures are actionable and leave
// the session ONLINE; snapshot-format failures reject an import without
// mutating state.
var (
	ErrPayloadTooLarge   = errors.New("payload exceeds remote write limit")
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrBadSnapshot       = errors.New("malformed snapshot document")
	ErrNotFound          = errors.New("record not found")
)

// PayloadTooLargeError reports a single image payload too big for one
// remote write. The caller can name the offending image to the user
// ("reduce image size") instead of showing a generic failure.
type PayloadTooLargeError struct {
	Key   string // child record key "{itemId}_{imageIndex}"
	Size  int
	Limit int
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("image %s is %d bytes, remote write limit is %d", e.Key, e.Size, e.Limit)
}

func (e *PayloadTooLargeError) Unwrap() error { return ErrPayloadTooLarge }

// SnapshotFormatError reports why an imported snapshot document was
// rejected at the boundary.
type SnapshotFormatError struct {
	Field  string
	Reason string
}

func (e *SnapshotFormatError) Error() string {
	return fmt.Sprintf("invalid snapshot: %s: %s", e.Field, e.Reason)
}

func (e *SnapshotFormatError) Unwrap() error { return ErrBadSnapshot }

// RemoteError reports a failed remote backend operation. It matches
// ErrRemoteUnavailable and keeps the driver error in the chain.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() []error { return []error{ErrRemoteUnavailable, e.Err} }
