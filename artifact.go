package authstate

import (
	"encoding/json"
	"time"
)

// Artifact is one persisted session capture. It is immutable once written;
// a new capture produces a new artifact rather than renewing an old one.
type Artifact struct {
	CaptureID    string            `json:"capture_id,omitempty"`
	CapturedAt   time.Time         `json:"captured_at"`
	ExpiresAt    time.Time         `json:"expires_at"`
	Environment  Environment       `json:"environment"`
	Browser      Browser           `json:"browser"`
	URL          string            `json:"url,omitempty"`
	Title        string            `json:"title,omitempty"`
	UserAgent    string            `json:"user_agent,omitempty"`
	Tokens       map[string]string `json:"tokens,omitempty"`
	StorageState *StorageState     `json:"storage_state"`
}

// ValidAt reports whether the artifact may still be restored at the given
// instant. The boundary is exclusive: at exactly ExpiresAt it is expired.
func (a *Artifact) ValidAt(now time.Time) bool {
	return now.Before(a.ExpiresAt)
}

// Remaining returns how much of the validity window is left, never negative.
func (a *Artifact) Remaining(now time.Time) time.Duration {
	d := a.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// artifactWire mirrors Artifact with pointer fields for the required keys so
// a missing field is distinguishable from a zero value.
type artifactWire struct {
	CaptureID    string            `json:"capture_id"`
	CapturedAt   *time.Time        `json:"captured_at"`
	ExpiresAt    *time.Time        `json:"expires_at"`
	Environment  Environment       `json:"environment"`
	Browser      Browser           `json:"browser"`
	URL          string            `json:"url"`
	Title        string            `json:"title"`
	UserAgent    string            `json:"user_agent"`
	Tokens       map[string]string `json:"tokens"`
	StorageState *StorageState     `json:"storage_state"`
}

// decodeArtifact parses and schema-checks raw artifact JSON. path is only
// used for error reporting.
func decodeArtifact(path string, data []byte) (*Artifact, error) {
	var w artifactWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &CorruptStateError{Path: path, Reason: "invalid JSON", Err: err}
	}
	switch {
	case w.CapturedAt == nil:
		return nil, &CorruptStateError{Path: path, Reason: "missing captured_at"}
	case w.ExpiresAt == nil:
		return nil, &CorruptStateError{Path: path, Reason: "missing expires_at"}
	case w.StorageState == nil:
		return nil, &CorruptStateError{Path: path, Reason: "missing storage_state"}
	case !w.ExpiresAt.After(*w.CapturedAt):
		return nil, &CorruptStateError{Path: path, Reason: "expires_at is not after captured_at"}
	}
	return &Artifact{
		CaptureID:    w.CaptureID,
		CapturedAt:   *w.CapturedAt,
		ExpiresAt:    *w.ExpiresAt,
		Environment:  w.Environment,
		Browser:      w.Browser,
		URL:          w.URL,
		Title:        w.Title,
		UserAgent:    w.UserAgent,
		Tokens:       w.Tokens,
		StorageState: w.StorageState,
	}, nil
}

func encodeArtifact(a *Artifact) ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}
