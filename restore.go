package authstate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// RestoreOptions configures the rehydration of a saved session.
type RestoreOptions struct {
	// Path is an explicit artifact file. When empty, the latest artifact
	// for (Environment, Browser) is used.
	Path        string
	Environment Environment

	// Browser is the engine to launch. When empty, the artifact's own
	// browser tag is used. The tag is informational: restoring a chromium
	// capture into firefox is allowed, just not enforced either way.
	Browser Browser

	// URL is the address to open once the context is seeded. When empty,
	// the artifact's capture URL is used.
	URL string

	Headless bool
	Logger   *zap.Logger

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Restore loads an artifact, refuses it if expired, and otherwise launches a
// browser whose context is seeded with the artifact's storage state. The
// expiry check happens strictly before any engine call: an expired or
// unreadable artifact never starts a browser.
//
// On success the caller owns the returned Session and Page and must close
// them.
func Restore(ctx context.Context, engine Engine, store *Store, opts RestoreOptions) (Session, Page, *Artifact, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	var artifact *Artifact
	var path string
	var err error
	if opts.Path != "" {
		path = opts.Path
		artifact, err = store.Load(path)
	} else {
		artifact, path, err = store.LoadLatest(opts.Environment, opts.Browser)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	now := clock()
	if !artifact.ValidAt(now) {
		logger.Warn("artifact expired",
			zap.String("path", path),
			zap.Time("expires_at", artifact.ExpiresAt),
			zap.Time("now", now))
		return nil, nil, nil, &ExpiredStateError{Path: path, ExpiresAt: artifact.ExpiresAt}
	}

	browser := opts.Browser
	if browser == "" {
		browser = artifact.Browser
	}
	if !browser.Valid() {
		return nil, nil, nil, fmt.Errorf("authstate: unsupported browser %q", browser)
	}

	session, err := engine.Launch(ctx, browser, opts.Headless)
	if err != nil {
		return nil, nil, nil, &LaunchError{Browser: browser, Err: err}
	}
	page, err := session.NewContext(ctx, artifact.StorageState)
	if err != nil {
		_ = session.Close()
		return nil, nil, nil, &LaunchError{Browser: browser, Err: err}
	}

	logger.Info("session restored",
		zap.String("path", path),
		zap.String("browser", string(browser)),
		zap.Int("cookies", len(artifact.StorageState.Cookies)),
		zap.Duration("remaining", artifact.Remaining(now)))

	url := opts.URL
	if url == "" {
		url = artifact.URL
	}
	if url != "" {
		if err := page.Goto(ctx, url); err != nil {
			_ = page.Close()
			_ = session.Close()
			return nil, nil, nil, fmt.Errorf("authstate: navigate %s: %w", url, err)
		}
	}

	return session, page, artifact, nil
}
