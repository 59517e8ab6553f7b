// Package auth implements the credential and bearer-token core that sits
// in front of the device REST surface.
//
// Login verifies an email/password pair against the credential collection,
// mints a random token and persists it. Later requests prove themselves by
// presenting that token, validity is a pure read-time check against the
// issue timestamp plus a process-wide timeout. There is no revocation and
// no logout, a token simply stops validating once it expires.
//
// Failed logins never reveal whether the email or the password was wrong,
// both collapse into ErrInvalidCredentials before leaving this package.
//
// Email uniqueness is enforced by a lookup before insert, not by a store
// constraint, so two concurrent registrations of the same email can both
// win. Callers that care must serialize registration themselves.
package auth
