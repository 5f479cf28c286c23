package authstate

import "context"

// Engine launches browser instances. The production implementation is
// PlaywrightEngine; tests substitute an in-memory fake.
type Engine interface {
	Launch(ctx context.Context, kind Browser, headless bool) (Session, error)
}

// Session is one running browser instance.
type Session interface {
	// NewContext creates an isolated context with a single page. A non-nil
	// state seeds the context's cookies and web storage before any
	// navigation happens.
	NewContext(ctx context.Context, state *StorageState) (Page, error)
	Close() error
}

// Page is a context-plus-page pair, the unit both capture and restore
// operate on.
type Page interface {
	Goto(ctx context.Context, url string) error
	Title() (string, error)
	URL() string
	UserAgent(ctx context.Context) (string, error)

	// StorageState snapshots the context's cookies and per-origin storage.
	StorageState(ctx context.Context) (*StorageState, error)

	// WebStorage dumps the current page's localStorage and sessionStorage.
	// sessionStorage is not part of StorageState, so token extraction reads
	// it here while the page is still live.
	WebStorage(ctx context.Context) (local, session map[string]string, err error)

	Close() error
}
