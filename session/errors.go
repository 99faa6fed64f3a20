package session

import "errors"

var (
	// ErrAuthFailure is returned when STS rejects the MFA code, the base
	// credentials or the role assumption, or when no MFA code could be read.
	ErrAuthFailure = errors.New("authentication failed")

	// ErrStorageFailure is returned when the session cache cannot be written
	// or a stale entry cannot be removed.
	ErrStorageFailure = errors.New("storage failure")

	// ErrCorruptCache is returned by a Store when a cached session exists but
	// cannot be read or decoded. The Manager recovers from it locally.
	ErrCorruptCache = errors.New("corrupt session cache")

	// ErrInvalidArgument is returned for unusable profiles or options, and when
	// STS rejects a request parameter such as the role session name.
	ErrInvalidArgument = errors.New("invalid argument")
)
