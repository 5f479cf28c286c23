package authstate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLooksLikeLoginRedirect(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://login.microsoftonline.com/common/oauth2/v2.0/authorize?x=1", true},
		{"https://app.test.example.com/account/signin?returnUrl=%2F", true},
		{"https://idp.example.com/login", true},
		{"https://app.test.example.com/dashboard", false},
		{"https://app.test.example.com/reports/2025", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := looksLikeLoginRedirect(tc.url); got != tc.want {
			t.Errorf("looksLikeLoginRedirect(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestVerify_AuthenticatedSession(t *testing.T) {
	store := NewStore(t.TempDir())
	captured := mustTime(t, "2025-11-09T10:46:48Z")
	a := sampleArtifact(captured, DefaultValidity)
	path := mustSave(t, store, a)

	fake := &fakeEngine{title: "Dashboard"}
	report, err := Verify(context.Background(), fake, store, path, "https://app.test.example.com/dashboard", RestoreOptions{
		Clock: fixedClock(captured.Add(time.Hour)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !report.Authenticated {
		t.Fatalf("report = %+v", report)
	}
	if !fake.lastHeadless {
		t.Fatal("smoke test must run headless")
	}
	if report.Title != "Dashboard" {
		t.Fatalf("title = %q", report.Title)
	}
	if want := 23 * time.Hour; report.Remaining != want {
		t.Fatalf("remaining = %s, want %s", report.Remaining, want)
	}
}

func TestVerify_LoginRedirectMeansNotAuthenticated(t *testing.T) {
	store := NewStore(t.TempDir())
	captured := mustTime(t, "2025-11-09T10:46:48Z")
	path := mustSave(t, store, sampleArtifact(captured, DefaultValidity))

	fake := &fakeEngine{finalURL: "https://login.microsoftonline.com/common/oauth2/authorize"}
	report, err := Verify(context.Background(), fake, store, path, "https://app.test.example.com/dashboard", RestoreOptions{
		Clock: fixedClock(captured.Add(time.Hour)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if report.Authenticated {
		t.Fatal("login redirect reported as authenticated")
	}
}

func TestVerify_ExpiredArtifactNeverLaunches(t *testing.T) {
	store := NewStore(t.TempDir())
	captured := mustTime(t, "2025-11-09T10:46:48Z")
	path := mustSave(t, store, sampleArtifact(captured, DefaultValidity))

	fake := &fakeEngine{}
	_, err := Verify(context.Background(), fake, store, path, "", RestoreOptions{
		Clock: fixedClock(captured.Add(48 * time.Hour)),
	})
	var expired *ExpiredStateError
	if !errors.As(err, &expired) {
		t.Fatalf("want ExpiredStateError, got %v", err)
	}
	if fake.launches != 0 {
		t.Fatal("browser launched for expired artifact")
	}
}
