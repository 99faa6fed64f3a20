package session

import (
	"context"
	"time"
)

// Credentials are the calling credentials for an STS request. SessionToken is
// empty for long-lived base credentials.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Exchanger performs the two STS calls the Manager depends on
type Exchanger interface {
	// GetSessionToken trades base credentials and an MFA code for a session token
	GetSessionToken(ctx context.Context, base Credentials, mfaSerial, mfaCode string, lifetime time.Duration) (*CachedSession, error)

	// AssumeRole trades a session token for credentials of roleARN
	AssumeRole(ctx context.Context, calling Credentials, roleARN, sessionName, externalID string, lifetime time.Duration) (*CachedSession, error)
}

// MfaDeviceFunc looks up an MFA device serial for base credentials when a
// profile does not name one.
type MfaDeviceFunc func(ctx context.Context, base Credentials) (string, error)
