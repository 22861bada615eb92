// Package cookie reads and writes HTTP cookies, optionally signed or
// encrypted.
//
// The engine creates one Manager from the site's "cookies" section. Form
// progress and flash messages are stored as encrypted JSON:
//
//	m, err := cookie.New(cookie.WithSecret(secret), cookie.WithSecure(true))
//	...
//	err = m.SetValue(w, "form_contact", state, 3600)
//	err = m.Value(r, "form_contact", &state)
//
// Signing and encryption keys are derived from the secret with HMAC-SHA256
// and both bind the cookie name, so a value is only valid under the name
// it was written with.
package cookie
