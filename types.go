package authstate

import "time"

// Browser identifies a Playwright browser engine.
type Browser string

const (
	// BrowserChromium is the Chromium engine.
	BrowserChromium Browser = "chromium"
	// BrowserFirefox is the Firefox engine.
	BrowserFirefox Browser = "firefox"
	// BrowserWebKit is the WebKit engine.
	BrowserWebKit Browser = "webkit"
)

// Browsers returns the supported engines in menu order.
func Browsers() []Browser {
	return []Browser{BrowserChromium, BrowserFirefox, BrowserWebKit}
}

// Valid reports whether b names a supported engine.
func (b Browser) Valid() bool {
	switch b {
	case BrowserChromium, BrowserFirefox, BrowserWebKit:
		return true
	default:
		return false
	}
}

// Environment identifies the target deployment a capture was taken against.
type Environment string

const (
	// EnvTest is the test environment.
	EnvTest Environment = "test"
	// EnvPreprod is the pre-production environment.
	EnvPreprod Environment = "preprod"
	// EnvProd is the production environment.
	EnvProd Environment = "prod"
)

// Environments returns the known environments in menu order.
func Environments() []Environment {
	return []Environment{EnvTest, EnvPreprod, EnvProd}
}

// Valid reports whether e names a known environment.
func (e Environment) Valid() bool {
	switch e {
	case EnvTest, EnvPreprod, EnvProd:
		return true
	default:
		return false
	}
}

// DefaultValidity is how long a captured session is trusted after capture.
const DefaultValidity = 24 * time.Hour

// Cookie is one browser cookie in a storage snapshot. Field names and the
// expires-as-epoch-seconds convention follow Playwright's storage-state JSON
// so artifacts stay interchangeable with files the engine writes itself.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// StorageItem is a single localStorage entry.
type StorageItem struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// OriginState holds the web storage captured for one origin.
type OriginState struct {
	Origin       string        `json:"origin"`
	LocalStorage []StorageItem `json:"localStorage"`
}

// StorageState is the engine's serialized session snapshot: every cookie in
// the context plus per-origin web storage.
type StorageState struct {
	Cookies []Cookie      `json:"cookies"`
	Origins []OriginState `json:"origins"`
}

// Empty reports whether the snapshot carries no session data at all.
func (s *StorageState) Empty() bool {
	return s == nil || (len(s.Cookies) == 0 && len(s.Origins) == 0)
}
