package authstate

import "testing"

func TestExtractTokens(t *testing.T) {
	local := map[string]string{
		"msal.idtoken":                "eyJ1",
		"access_token":                "tok",
		"MSAL.Account.Keys":           "keys",
		"theme":                       "dark",
		"sidebar-collapsed":           "true",
		"de2f..-login.windows.net.accesstoken": "eyJ2",
	}
	session := map[string]string{
		"session_nonce": "n1",
		"locale":        "he-IL",
	}

	tokens := ExtractTokens(local, session)

	for _, want := range []string{"msal.idtoken", "access_token", "MSAL.Account.Keys", "de2f..-login.windows.net.accesstoken", "session_nonce"} {
		if _, ok := tokens[want]; !ok {
			t.Errorf("token key %q not extracted", want)
		}
	}
	for _, reject := range []string{"theme", "sidebar-collapsed", "locale"} {
		if _, ok := tokens[reject]; ok {
			t.Errorf("non-token key %q extracted", reject)
		}
	}
}

func TestExtractTokens_LaterMapsWin(t *testing.T) {
	first := map[string]string{"access_token": "old"}
	second := map[string]string{"access_token": "new"}
	tokens := ExtractTokens(first, second)
	if tokens["access_token"] != "new" {
		t.Fatalf("access_token = %q", tokens["access_token"])
	}
}

func TestExtractTokens_EmptyInput(t *testing.T) {
	if tokens := ExtractTokens(nil, map[string]string{}); tokens != nil {
		t.Fatalf("want nil for no matches, got %v", tokens)
	}
}
