package authstate

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeEngine implements Engine, Session and Page in one struct so tests can
// observe the whole capture/restore flow without a real browser.
type fakeEngine struct {
	launches     int
	lastKind     Browser
	lastHeadless bool

	launchErr  error
	contextErr error
	gotoErr    error
	stateErr   error

	// state is what StorageState() hands back during capture.
	state *StorageState
	// seeded records what NewContext received during restore.
	seeded *StorageState

	local   map[string]string
	session map[string]string

	title    string
	ua       string
	gotoURL  string
	finalURL string // overrides URL() when set

	calls []string
}

func (f *fakeEngine) Launch(_ context.Context, kind Browser, headless bool) (Session, error) {
	f.calls = append(f.calls, "launch")
	if f.launchErr != nil {
		return nil, f.launchErr
	}
	f.launches++
	f.lastKind = kind
	f.lastHeadless = headless
	return f, nil
}

func (f *fakeEngine) NewContext(_ context.Context, state *StorageState) (Page, error) {
	f.calls = append(f.calls, "newcontext")
	if f.contextErr != nil {
		return nil, f.contextErr
	}
	f.seeded = state
	return f, nil
}

func (f *fakeEngine) Goto(_ context.Context, url string) error {
	f.calls = append(f.calls, "goto")
	if f.gotoErr != nil {
		return f.gotoErr
	}
	f.gotoURL = url
	return nil
}

func (f *fakeEngine) Title() (string, error) { return f.title, nil }

func (f *fakeEngine) URL() string {
	if f.finalURL != "" {
		return f.finalURL
	}
	return f.gotoURL
}

func (f *fakeEngine) UserAgent(context.Context) (string, error) { return f.ua, nil }

func (f *fakeEngine) StorageState(context.Context) (*StorageState, error) {
	f.calls = append(f.calls, "storagestate")
	if f.stateErr != nil {
		return nil, f.stateErr
	}
	return f.state, nil
}

func (f *fakeEngine) WebStorage(context.Context) (map[string]string, map[string]string, error) {
	return f.local, f.session, nil
}

func (f *fakeEngine) Close() error { return nil }

var errBoom = errors.New("boom")

func sampleState() *StorageState {
	return &StorageState{
		Cookies: []Cookie{
			{Name: ".AspNet.Cookies", Value: "opaque", Domain: "app.test.example.com", Path: "/", Expires: 1893456000, HTTPOnly: true, Secure: true, SameSite: "Lax"},
			{Name: "session_id", Value: "abc123", Domain: "app.test.example.com", Path: "/", Expires: -1},
		},
		Origins: []OriginState{
			{
				Origin: "https://app.test.example.com",
				LocalStorage: []StorageItem{
					{Name: "msal.idtoken", Value: "eyJ"},
					{Name: "theme", Value: "dark"},
				},
			},
		},
	}
}

func sampleArtifact(captured time.Time, window time.Duration) *Artifact {
	return &Artifact{
		CaptureID:    "cap-1",
		CapturedAt:   captured,
		ExpiresAt:    captured.Add(window),
		Environment:  EnvTest,
		Browser:      BrowserChromium,
		URL:          "https://app.test.example.com/dashboard",
		StorageState: sampleState(),
	}
}

func mustSave(t *testing.T, store *Store, a *Artifact) string {
	t.Helper()
	path, err := store.Save(a)
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// mustTime parses an RFC 3339 timestamp or fails the test.
func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}
