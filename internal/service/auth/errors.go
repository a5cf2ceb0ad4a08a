package auth

import (
	"errors"
	"fmt"
)

// Common authentication service errors
var (
	// ErrInvalidToken is the parent of every token verification failure.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrMalformedToken indicates the token could not be decoded.
	ErrMalformedToken = fmt.Errorf("%w: malformed", ErrInvalidToken)

	// ErrInvalidSignature indicates the signature does not match the secret
	// or an algorithm other than HS256 was used.
	ErrInvalidSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = fmt.Errorf("%w: expired", ErrInvalidToken)

	// ErrTokenNotYetValid indicates the token is not yet valid (iat/nbf in the future)
	ErrTokenNotYetValid = fmt.Errorf("%w: not yet valid", ErrInvalidToken)

	// ErrSecretTooShort is returned when the signing secret is under MinSecretLength bytes.
	ErrSecretTooShort = fmt.Errorf("signing secret must be at least %d bytes", MinSecretLength)

	// ErrInvalidCredentials covers unknown users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
