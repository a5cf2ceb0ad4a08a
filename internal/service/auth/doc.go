// Package auth issues and verifies HS256 tokens and checks passwords.
//
// Token verification is stateless: a token is valid when its signature
// matches the configured secret and it has not expired. There is no
// refresh or revocation.
package auth
