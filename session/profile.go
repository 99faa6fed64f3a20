package session

import "fmt"

const DefaultRegion = "us-east-1"

// Profile is the resolved, immutable input for one run
type Profile struct {
	Name            string
	Region          string
	RoleARN         string
	MfaSerial       string
	ExternalID      string
	RoleSessionName string

	AccessKeyID     string
	SecretAccessKey string
}

// Validate checks that the profile carries everything the exchange needs
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: profile name is empty", ErrInvalidArgument)
	}
	if p.RoleARN == "" {
		return fmt.Errorf("%w: profile %s: role_arn is not set", ErrInvalidArgument, p.Name)
	}
	if p.AccessKeyID == "" || p.SecretAccessKey == "" {
		return fmt.Errorf("%w: profile %s: base credentials missing", ErrInvalidArgument, p.Name)
	}
	return nil
}

// BaseCredentials returns the long-lived credentials of the profile
func (p Profile) BaseCredentials() Credentials {
	return Credentials{
		AccessKeyID:     p.AccessKeyID,
		SecretAccessKey: p.SecretAccessKey,
	}
}
