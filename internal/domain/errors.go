package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotInitialized is returned when the conversational pipeline is
// invoked before successful construction.
var ErrNotInitialized = errors.New("conversational pipeline not initialized")

// UnsupportedFileTypeError marks a file whose extension is outside the
// supported set. During batch ingestion this is an expected skip, not a
// failure.
type UnsupportedFileTypeError struct {
	Path string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %q for file %s", strings.ToLower(filepath.Ext(e.Path)), e.Path)
}

// DocumentReadError wraps a parse or I/O failure while reading one file.
type DocumentReadError struct {
	Path string
	Err  error
}

func (e *DocumentReadError) Error() string {
	return fmt.Sprintf("read document %s: %v", e.Path, e.Err)
}

func (e *DocumentReadError) Unwrap() error { return e.Err }

// UploadError wraps an object store upload failure. Upload failures are
// fatal for the batch: archival and indexing must stay consistent.
type UploadError struct {
	Path string
	Key  string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s to object store key %s: %v", e.Path, e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// VectorWriteError wraps a failure writing embedded chunks to a
// collection. Partial writes are not rolled back.
type VectorWriteError struct {
	Collection string
	Err        error
}

func (e *VectorWriteError) Error() string {
	return fmt.Sprintf("write to vector collection %q: %v", e.Collection, e.Err)
}

func (e *VectorWriteError) Unwrap() error { return e.Err }

// InitializationError reports a failure to construct the conversational
// pipeline for a user.
type InitializationError struct {
	User string
	Err  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialize conversational pipeline for user %q: %v", e.User, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// InvocationError is the uniform wrapper for any failure during a
// conversational invocation, regardless of the stage that failed.
type InvocationError struct {
	User      string
	SessionID string
	Stage     string
	Err       error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invoke conversational pipeline (user=%s session=%s stage=%s): %v", e.User, e.SessionID, e.Stage, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// MissingSecretError reports required secret keys absent at startup.
type MissingSecretError struct {
	Keys []string
}

func (e *MissingSecretError) Error() string {
	return fmt.Sprintf("missing required secrets: %s", strings.Join(e.Keys, ", "))
}
