package authstate

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// VerifyReport is the outcome of a smoke test against a saved artifact.
type VerifyReport struct {
	// Authenticated is true when navigating to the check URL did not bounce
	// to a login page.
	Authenticated bool
	FinalURL      string
	Title         string
	ExpiresAt     time.Time
	Remaining     time.Duration
}

// loginMarkers are path/host fragments that identify an IdP login redirect.
var loginMarkers = []string{
	"login", "signin", "sign-in",
	"microsoftonline", "oauth2", "authorize",
}

// looksLikeLoginRedirect reports whether rawURL points at a login flow
// rather than the application itself. There is no portable signal for
// "this page is a login form", so this stays a URL heuristic.
func looksLikeLoginRedirect(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	probe := strings.ToLower(u.Host + u.EscapedPath())
	for _, m := range loginMarkers {
		if strings.Contains(probe, m) {
			return true
		}
	}
	return false
}

// Verify restores the artifact at path into a throwaway headless context,
// navigates to checkURL (default: the artifact's capture URL) and reports
// whether the session still looks authenticated. It cannot detect
// server-side invalidation beyond the redirect heuristic.
func Verify(ctx context.Context, engine Engine, store *Store, path, checkURL string, opts RestoreOptions) (*VerifyReport, error) {
	opts.Path = path
	opts.URL = checkURL
	opts.Headless = true

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	session, page, artifact, err := Restore(ctx, engine, store, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = page.Close()
		_ = session.Close()
	}()

	report := &VerifyReport{
		FinalURL:  page.URL(),
		ExpiresAt: artifact.ExpiresAt,
		Remaining: artifact.Remaining(clock()),
	}
	report.Authenticated = !looksLikeLoginRedirect(report.FinalURL)
	if title, err := page.Title(); err == nil {
		report.Title = title
	}
	return report, nil
}
