// Package authstate captures a browser session after a manual login/2FA
// flow and rehydrates it later, so automated runs against the same
// environment skip interactive login until the artifact expires.
//
// This is intended for local test tooling. Artifacts hold live session
// credentials (cookies, web storage, tokens); sealing keeps them encrypted
// at rest, and use may trigger keychain/keyring prompts. Not for server
// contexts.
package authstate
