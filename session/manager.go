package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	log "github.com/sirupsen/logrus"

	"github.com/awssession/aws-session/prompt"
)

// Clock returns the current time
type Clock func() time.Time

// Manager keeps the two cached tiers of a profile valid. An AssumedRole
// session is only ever issued with a valid SessionToken as calling
// credentials, and an MFA code is requested only when a new SessionToken has
// to be issued.
type Manager struct {
	Profile   Profile
	Options   Options
	Store     Store
	Exchanger Exchanger
	Prompt    prompt.Func

	// MfaDevice finds an MFA serial when the profile names none
	MfaDevice MfaDeviceFunc

	// Clock defaults to time.Now
	Clock Clock

	// Username identifies the operator in role session names
	Username string
}

var _ aws.CredentialsProvider = (*Manager)(nil)

func (m *Manager) now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	return time.Now()
}

// Start returns valid AssumedRole credentials, loading cached tiers and
// issuing missing or expired ones.
func (m *Manager) Start(ctx context.Context) (CredentialSet, error) {
	if err := m.Profile.Validate(); err != nil {
		return CredentialSet{}, err
	}
	if err := m.Options.Validate(); err != nil {
		return CredentialSet{}, err
	}
	if err := m.Options.ValidateFilenames(m.Profile.Name); err != nil {
		return CredentialSet{}, err
	}

	roleKey := CacheKey{m.Profile.Name, AssumedRole}
	role, err := m.load(roleKey)
	if err != nil {
		return CredentialSet{}, err
	}
	if role != nil {
		return role.CredentialSet(), nil
	}

	token, err := m.sessionToken(ctx)
	if err != nil {
		return CredentialSet{}, err
	}

	sessionName := m.sessionName()
	log.Infof("Assuming role %s as %s", m.Profile.RoleARN, sessionName)
	role, err = m.Exchanger.AssumeRole(ctx, token.Credentials(), m.Profile.RoleARN, sessionName, m.Profile.ExternalID, m.Options.RoleLifetime)
	if err != nil {
		return CredentialSet{}, exchangeError(err)
	}
	if err = m.Store.Save(roleKey, role); err != nil {
		return CredentialSet{}, err
	}
	log.Infof("Using role credentials %s, expires in %s", FormatKeyForDisplay(role.AccessKeyID), role.Expiration.Sub(m.now()).Round(time.Second))

	return role.CredentialSet(), nil
}

// Retrieve implements aws.CredentialsProvider
func (m *Manager) Retrieve(ctx context.Context) (aws.Credentials, error) {
	creds, err := m.Start(ctx)
	if err != nil {
		return aws.Credentials{}, err
	}
	return creds.AWSCredentials(), nil
}

// sessionToken returns a valid SessionToken, prompting for an MFA code and
// issuing a new one when none is cached
func (m *Manager) sessionToken(ctx context.Context) (*CachedSession, error) {
	key := CacheKey{m.Profile.Name, SessionToken}
	token, err := m.load(key)
	if err != nil || token != nil {
		return token, err
	}

	base := m.Profile.BaseCredentials()
	serial, err := m.mfaSerial(ctx, base)
	if err != nil {
		return nil, err
	}
	if m.Prompt == nil {
		return nil, fmt.Errorf("%w: no MFA prompt configured", ErrInvalidArgument)
	}

	code, err := m.Prompt(serial)
	if err != nil {
		return nil, fmt.Errorf("%w: reading MFA code: %v", ErrAuthFailure, err)
	}

	log.Infof("Creating new session token with %s", FormatKeyForDisplay(base.AccessKeyID))
	token, err = m.Exchanger.GetSessionToken(ctx, base, serial, code, m.Options.SessionTokenLifetime)
	if err != nil {
		return nil, exchangeError(err)
	}
	if err = m.Store.Save(key, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (m *Manager) mfaSerial(ctx context.Context, base Credentials) (string, error) {
	if m.Profile.MfaSerial != "" {
		return m.Profile.MfaSerial, nil
	}
	if m.MfaDevice == nil {
		return "", fmt.Errorf("%w: profile %s: mfa_serial is not set", ErrInvalidArgument, m.Profile.Name)
	}
	serial, err := m.MfaDevice(ctx, base)
	if err != nil {
		return "", err
	}
	return serial, nil
}

// load returns the session stored under key if it is still valid. Expired,
// corrupt and unreadable entries are deleted and reported as absent.
func (m *Manager) load(key CacheKey) (*CachedSession, error) {
	sess, err := m.Store.Load(key)
	switch {
	case errors.Is(err, ErrCorruptCache):
		log.Warnf("Ignoring unreadable %s session for %s: %v", key.Tier, key.Profile, err)
		return nil, m.Store.Delete(key)
	case err != nil:
		return nil, err
	case sess == nil:
		log.Debugf("No cached %s session for %s", key.Tier, key.Profile)
		return nil, nil
	}

	now := m.now()
	if !sess.IsValid(now, m.Options.ExpiryWindow) {
		log.Infof("Cached %s session for %s expired at %s, removing", key.Tier, key.Profile, sess.Expiration.Format(time.RFC3339))
		return nil, m.Store.Delete(key)
	}

	log.Infof("Found valid %s session %s for %s, expires in %s", key.Tier, FormatKeyForDisplay(sess.AccessKeyID), key.Profile, sess.Expiration.Sub(now).Round(time.Second))
	return sess, nil
}

func (m *Manager) sessionName() string {
	if m.Profile.RoleSessionName != "" {
		return m.Profile.RoleSessionName
	}
	return NewSessionName(m.Username, m.now())
}

// exchangeError makes sure a failed exchange reports as an auth failure
// unless it was already classified
func exchangeError(err error) error {
	if errors.Is(err, ErrAuthFailure) || errors.Is(err, ErrInvalidArgument) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrAuthFailure, err)
}
