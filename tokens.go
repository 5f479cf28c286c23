package authstate

import "strings"

// tokenKeyPatterns are substrings that mark a web-storage key as an auth
// token: OAuth/OIDC standard names, MSAL/ADAL entries and common generics.
var tokenKeyPatterns = []string{
	"access_token", "id_token", "refresh_token",
	"msal", "adal",
	"bearer", "jwt", "auth",
	"token", "session",
	".authority", ".idtoken", ".accesstoken",
}

// ExtractTokens collects entries whose key matches a known token pattern
// from one or more web-storage dumps. Later maps win on key collisions.
func ExtractTokens(stores ...map[string]string) map[string]string {
	var out map[string]string
	for _, store := range stores {
		for k, v := range store {
			if !isTokenKey(k) {
				continue
			}
			if out == nil {
				out = make(map[string]string)
			}
			out[k] = v
		}
	}
	return out
}

func isTokenKey(key string) bool {
	lower := strings.ToLower(key)
	for _, p := range tokenKeyPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
