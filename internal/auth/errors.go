package auth

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the identity or
	// secret does not check out. Login performs no side effects in
	// this case.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken is returned by Refresh when no stored record
	// matches the presented raw token.
	ErrInvalidToken = errors.New("invalid refresh token")

	// ErrExpiredToken is returned when the matched record is past its
	// expiry but was never revoked. Natural expiry is not evidence of
	// theft, so no cascade happens.
	ErrExpiredToken = errors.New("expired refresh token")

	// ErrSecurityBreach is returned when an already-revoked token is
	// presented again, or when a concurrent refresh loses the rotation
	// race. By the time the caller sees this error, every session of
	// the affected user has been revoked server-side.
	ErrSecurityBreach = errors.New("security breach detected, sessions invalidated")

	// ErrRefreshIncomplete is returned when the presented token was
	// revoked but minting the replacement pair failed. The caller
	// should fall back to a full login rather than retry the refresh.
	ErrRefreshIncomplete = errors.New("refresh incomplete, please authenticate again")
)
