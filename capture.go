package authstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConfirmGate blocks until the operator confirms that login and any 2FA
// challenge are complete. It is an unbounded synchronous wait, cancellable
// only through the context.
type ConfirmGate func(ctx context.Context) error

// CaptureOptions configures one interactive capture run.
type CaptureOptions struct {
	// URL is the address the browser opens for the manual login flow.
	URL string

	Environment Environment
	Browser     Browser

	// Validity is how long the artifact stays usable. Zero means
	// DefaultValidity.
	Validity time.Duration

	// Gate suspends the run until the operator has finished logging in.
	Gate ConfirmGate

	Logger *zap.Logger

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Capture drives an interactive login session to completion and returns the
// resulting artifact. The browser is always headful: a human has to type
// credentials and answer the 2FA challenge. Persisting the artifact is the
// Store's job.
func Capture(ctx context.Context, engine Engine, opts CaptureOptions) (*Artifact, error) {
	if !opts.Browser.Valid() {
		return nil, fmt.Errorf("authstate: unsupported browser %q", opts.Browser)
	}
	if !opts.Environment.Valid() {
		return nil, fmt.Errorf("authstate: unknown environment %q", opts.Environment)
	}
	if opts.URL == "" {
		return nil, errors.New("authstate: capture URL required")
	}
	if opts.Gate == nil {
		return nil, errors.New("authstate: confirm gate required")
	}
	validity := opts.Validity
	if validity <= 0 {
		validity = DefaultValidity
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	session, err := engine.Launch(ctx, opts.Browser, false)
	if err != nil {
		return nil, &CaptureError{Stage: "launch", Err: err}
	}
	defer func() { _ = session.Close() }()

	page, err := session.NewContext(ctx, nil)
	if err != nil {
		return nil, &CaptureError{Stage: "launch", Err: err}
	}
	defer func() { _ = page.Close() }()

	logger.Info("opening login page",
		zap.String("url", opts.URL),
		zap.String("browser", string(opts.Browser)),
		zap.String("environment", string(opts.Environment)))

	if err := page.Goto(ctx, opts.URL); err != nil {
		return nil, &CaptureError{Stage: "navigate", Err: err}
	}

	// Unbounded wait for the operator. This is the only suspension point in
	// the whole flow.
	if err := opts.Gate(ctx); err != nil {
		return nil, err
	}

	state, err := page.StorageState(ctx)
	if err != nil {
		return nil, &CaptureError{Stage: "extract", Err: err}
	}
	if state.Empty() {
		return nil, &CaptureError{Stage: "extract", Err: errors.New("storage state is empty")}
	}
	logger.Info("captured storage state",
		zap.Int("cookies", len(state.Cookies)),
		zap.Int("origins", len(state.Origins)))

	artifact := &Artifact{
		CaptureID:    uuid.NewString(),
		Environment:  opts.Environment,
		Browser:      opts.Browser,
		StorageState: state,
	}

	// Web storage and page metadata are informational; a failure here does
	// not fail the capture.
	if local, sess, err := page.WebStorage(ctx); err != nil {
		logger.Warn("token extraction skipped", zap.Error(err))
	} else if tokens := ExtractTokens(local, sess); len(tokens) > 0 {
		artifact.Tokens = tokens
		logger.Info("extracted auth tokens", zap.Int("count", len(tokens)))
	}
	if title, err := page.Title(); err == nil {
		artifact.Title = title
	}
	artifact.URL = page.URL()
	if ua, err := page.UserAgent(ctx); err == nil {
		artifact.UserAgent = ua
	}

	now := clock().UTC()
	artifact.CapturedAt = now
	artifact.ExpiresAt = now.Add(validity)

	return artifact, nil
}
