package cli

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/awssession/aws-session/session"
)

var farFuture = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)

// exampleEnv writes an AWS config with a "llamas" profile and a session save
// path holding sessions that expire at expiration. It returns the config file,
// the session directory and a cleanup func.
func exampleEnv(expiration time.Time) (string, string, func()) {
	dir, err := os.MkdirTemp("", "aws-session")
	if err != nil {
		log.Fatal(err)
	}

	configFile := filepath.Join(dir, "config")
	err = os.WriteFile(configFile, []byte(`[profile llamas]
role_arn=arn:aws:iam::111111111111:role/llamas
mfa_serial=arn:aws:iam::111111111111:mfa/alpaca
aws_access_key_id=AKIALLAMAS
aws_secret_access_key=rock
region=us-east-1
`), 0600)
	if err != nil {
		log.Fatal(err)
	}

	os.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	os.Unsetenv("AWS_SESSION_PROFILE")

	sessionDir := filepath.Join(dir, "sessions")
	store := &session.FileStore{Dir: sessionDir}
	for _, tier := range session.Tiers {
		err = store.Save(session.CacheKey{Profile: "llamas", Tier: tier}, &session.CachedSession{
			AccessKeyID:     "ASIA" + tier.String(),
			SecretAccessKey: "secret-" + tier.String(),
			SessionToken:    "token-" + tier.String(),
			Expiration:      expiration,
		})
		if err != nil {
			log.Fatal(err)
		}
	}

	return configFile, sessionDir, func() {
		os.Unsetenv("AWS_SHARED_CREDENTIALS_FILE")
		os.RemoveAll(dir)
	}
}
