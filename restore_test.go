package authstate

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestRestore_Success(t *testing.T) {
	store := NewStore(t.TempDir())
	captured := mustTime(t, "2025-11-09T10:46:48Z")
	a := sampleArtifact(captured, DefaultValidity)
	path := mustSave(t, store, a)

	fake := &fakeEngine{}
	session, page, got, err := Restore(context.Background(), fake, store, RestoreOptions{
		Path:  path,
		URL:   "https://app.test.example.com/reports",
		Clock: fixedClock(captured.Add(time.Hour)),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = page.Close()
		_ = session.Close()
	}()

	if fake.launches != 1 {
		t.Fatalf("launches = %d", fake.launches)
	}
	if fake.lastKind != BrowserChromium {
		t.Fatalf("launched %s, want the artifact's browser", fake.lastKind)
	}
	if fake.gotoURL != "https://app.test.example.com/reports" {
		t.Fatalf("navigated to %s", fake.gotoURL)
	}
	if !got.ExpiresAt.Equal(a.ExpiresAt) {
		t.Fatalf("expires_at = %s", got.ExpiresAt)
	}

	// Round-trip identity: the seeded state is byte-equal to the captured one.
	want, err := json.Marshal(a.StorageState)
	if err != nil {
		t.Fatal(err)
	}
	seeded, err := json.Marshal(fake.seeded)
	if err != nil {
		t.Fatal(err)
	}
	if string(want) != string(seeded) {
		t.Fatalf("seeded state differs:\n got %s\nwant %s", seeded, want)
	}
}

func TestRestore_LatestLookupAndURLFallback(t *testing.T) {
	store := NewStore(t.TempDir())
	captured := mustTime(t, "2025-11-09T10:46:48Z")
	a := sampleArtifact(captured, DefaultValidity)
	mustSave(t, store, a)

	fake := &fakeEngine{}
	session, page, _, err := Restore(context.Background(), fake, store, RestoreOptions{
		Environment: EnvTest,
		Browser:     BrowserChromium,
		Clock:       fixedClock(captured.Add(time.Hour)),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = page.Close()
		_ = session.Close()
	}()
	if fake.gotoURL != a.URL {
		t.Fatalf("navigated to %s, want the capture URL %s", fake.gotoURL, a.URL)
	}
}

func TestRestore_ExpiryBoundary(t *testing.T) {
	store := NewStore(t.TempDir())
	captured := mustTime(t, "2025-11-09T10:46:48Z")
	path := mustSave(t, store, sampleArtifact(captured, DefaultValidity))

	cases := []struct {
		name    string
		now     string
		expired bool
	}{
		{"one second before expiry", "2025-11-10T10:46:47Z", false},
		{"exactly at expiry", "2025-11-10T10:46:48Z", true},
		{"one second past expiry", "2025-11-10T10:46:49Z", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeEngine{}
			session, page, _, err := Restore(context.Background(), fake, store, RestoreOptions{
				Path:  path,
				Clock: fixedClock(mustTime(t, tc.now)),
			})
			if tc.expired {
				var expErr *ExpiredStateError
				if !errors.As(err, &expErr) {
					t.Fatalf("want ExpiredStateError, got %v", err)
				}
				if !expErr.ExpiresAt.Equal(mustTime(t, "2025-11-10T10:46:48Z")) {
					t.Fatalf("error carries expiry %s", expErr.ExpiresAt)
				}
				if fake.launches != 0 {
					t.Fatal("browser launched for an expired artifact")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			_ = page.Close()
			_ = session.Close()
		})
	}
}

func TestRestore_MissingArtifactNeverLaunches(t *testing.T) {
	store := NewStore(t.TempDir())
	fake := &fakeEngine{}

	_, _, _, err := Restore(context.Background(), fake, store, RestoreOptions{
		Path: filepath.Join(store.Dir, "absent.json"),
	})
	var missing *MissingStateError
	if !errors.As(err, &missing) {
		t.Fatalf("want MissingStateError, got %v", err)
	}
	if fake.launches != 0 {
		t.Fatal("browser launched for a missing artifact")
	}
}

func TestRestore_LaunchFailure(t *testing.T) {
	store := NewStore(t.TempDir())
	captured := mustTime(t, "2025-11-09T10:46:48Z")
	path := mustSave(t, store, sampleArtifact(captured, DefaultValidity))

	fake := &fakeEngine{launchErr: errBoom}
	_, _, _, err := Restore(context.Background(), fake, store, RestoreOptions{
		Path:  path,
		Clock: fixedClock(captured.Add(time.Hour)),
	})
	var launch *LaunchError
	if !errors.As(err, &launch) {
		t.Fatalf("want LaunchError, got %v", err)
	}
	if launch.Browser != BrowserChromium {
		t.Fatalf("error names %s", launch.Browser)
	}
}

func TestRestore_BrowserOverride(t *testing.T) {
	store := NewStore(t.TempDir())
	captured := mustTime(t, "2025-11-09T10:46:48Z")
	path := mustSave(t, store, sampleArtifact(captured, DefaultValidity))

	fake := &fakeEngine{}
	session, page, _, err := Restore(context.Background(), fake, store, RestoreOptions{
		Path:    path,
		Browser: BrowserFirefox,
		Clock:   fixedClock(captured.Add(time.Hour)),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = page.Close()
		_ = session.Close()
	}()
	if fake.lastKind != BrowserFirefox {
		t.Fatalf("launched %s, want the override", fake.lastKind)
	}
}
