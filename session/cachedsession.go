package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	ststypes "github.com/aws/aws-sdk-go-v2/service/sts/types"

	"github.com/awssession/aws-session/iso8601"
)

// CachedSession is one tier of temporary credentials, as issued by STS
type CachedSession struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
}

// IsValid reports whether the session can still be used at now, treating it
// as expired window before its recorded expiration.
func (s *CachedSession) IsValid(now time.Time, window time.Duration) bool {
	return s != nil && now.Before(s.Expiration.Add(-window))
}

// Credentials returns the session's triple for use as calling credentials
func (s *CachedSession) Credentials() Credentials {
	return Credentials{
		AccessKeyID:     s.AccessKeyID,
		SecretAccessKey: s.SecretAccessKey,
		SessionToken:    s.SessionToken,
	}
}

// CredentialSet returns the session as a credential set for callers
func (s *CachedSession) CredentialSet() CredentialSet {
	return CredentialSet{
		AccessKeyID:     s.AccessKeyID,
		SecretAccessKey: s.SecretAccessKey,
		SessionToken:    s.SessionToken,
		Expires:         s.Expiration,
	}
}

func newCachedSession(c *ststypes.Credentials) (*CachedSession, error) {
	if c == nil || c.AccessKeyId == nil || c.SecretAccessKey == nil || c.SessionToken == nil || c.Expiration == nil {
		return nil, fmt.Errorf("%w: incomplete credentials in STS response", ErrAuthFailure)
	}
	return &CachedSession{
		AccessKeyID:     aws.ToString(c.AccessKeyId),
		SecretAccessKey: aws.ToString(c.SecretAccessKey),
		SessionToken:    aws.ToString(c.SessionToken),
		Expiration:      aws.ToTime(c.Expiration).UTC(),
	}, nil
}

// cachedSessionRecord is the serialised form written by the stores
type cachedSessionRecord struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	SessionToken    string `json:"session_token"`
	Expiration      string `json:"expiration"`
}

func marshalCachedSession(s *CachedSession) ([]byte, error) {
	return json.MarshalIndent(cachedSessionRecord{
		AccessKeyID:     s.AccessKeyID,
		SecretAccessKey: s.SecretAccessKey,
		SessionToken:    s.SessionToken,
		Expiration:      iso8601.Format(s.Expiration),
	}, "", "  ")
}

// unmarshalCachedSession decodes a record, rejecting anything that is not a
// complete session so a truncated write is never trusted.
func unmarshalCachedSession(b []byte) (*CachedSession, error) {
	var r cachedSessionRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}
	if r.AccessKeyID == "" || r.SecretAccessKey == "" || r.SessionToken == "" || r.Expiration == "" {
		return nil, fmt.Errorf("%w: missing fields", ErrCorruptCache)
	}
	expiration, err := iso8601.Parse(r.Expiration)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}

	return &CachedSession{
		AccessKeyID:     r.AccessKeyID,
		SecretAccessKey: r.SecretAccessKey,
		SessionToken:    r.SessionToken,
		Expiration:      expiration,
	}, nil
}

// CredentialSet is the usable result of a run: the AssumedRole triple and
// when it stops working.
type CredentialSet struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expires         time.Time
}

// AWSCredentials converts the set for use with aws-sdk-go-v2 clients
func (c CredentialSet) AWSCredentials() aws.Credentials {
	return aws.Credentials{
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		SessionToken:    c.SessionToken,
		CanExpire:       true,
		Expires:         c.Expires,
	}
}

// FormatKeyForDisplay masks all but the last four characters of a key
func FormatKeyForDisplay(k string) string {
	if len(k) < 4 {
		return "****************"
	}
	return fmt.Sprintf("****************%s", k[len(k)-4:])
}
