package authstate

import (
	"fmt"
	"time"
)

// CaptureError reports a failed capture run. Stage is one of "launch",
// "navigate" or "extract". Captures are one-shot: the operator re-invokes
// the command, nothing is retried here.
type CaptureError struct {
	Stage string
	Err   error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("authstate: capture failed during %s: %v", e.Stage, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// ExpiredStateError means the artifact parsed fine but its validity window
// has passed. The expiry timestamp is carried for operator diagnostics.
type ExpiredStateError struct {
	Path      string
	ExpiresAt time.Time
}

func (e *ExpiredStateError) Error() string {
	return fmt.Sprintf("authstate: artifact %s expired at %s", e.Path, e.ExpiresAt.Format(time.RFC3339))
}

// MissingStateError means no artifact exists at the given path.
type MissingStateError struct {
	Path string
}

func (e *MissingStateError) Error() string {
	return fmt.Sprintf("authstate: no artifact at %s", e.Path)
}

// CorruptStateError means a file exists at the path but fails schema
// validation. Missing required fields are never silently defaulted.
type CorruptStateError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptStateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authstate: artifact %s is corrupt: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("authstate: artifact %s is corrupt: %s", e.Path, e.Reason)
}

func (e *CorruptStateError) Unwrap() error { return e.Err }

// LaunchError means the browser engine failed to start for a restore.
type LaunchError struct {
	Browser Browser
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("authstate: failed to launch %s: %v", e.Browser, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }
