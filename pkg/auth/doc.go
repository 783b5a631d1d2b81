// Package auth implements the credential primitives: one-way password
// hashing and the signed token lifecycle (issue, verify, refresh).
//
// Tokens are self-contained HS256 JWTs. There is no revocation store: a
// refresh rotates both tokens, but the superseded refresh token stays
// cryptographically valid until its own expiry. That bounds the blast radius
// of a leaked refresh token to one rotation cycle while keeping every server
// instance stateless.
package auth
