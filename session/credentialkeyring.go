package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

// CredentialKeyring stores long-lived base credentials per profile, as
// written by `aws-session add`
type CredentialKeyring struct {
	Keyring keyring.Keyring
}

func (ck *CredentialKeyring) Keys() (credentialsNames []string, err error) {
	allKeys, err := ck.Keyring.Keys()
	if err != nil {
		return credentialsNames, err
	}
	for _, keyName := range allKeys {
		if !IsCacheKey(keyName) {
			credentialsNames = append(credentialsNames, keyName)
		}
	}
	return credentialsNames, nil
}

func (ck *CredentialKeyring) Has(credentialsName string) (bool, error) {
	_, err := ck.Keyring.Get(credentialsName)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (ck *CredentialKeyring) Get(credentialsName string) (creds Credentials, err error) {
	item, err := ck.Keyring.Get(credentialsName)
	if err != nil {
		return creds, err
	}
	if err = json.Unmarshal(item.Data, &creds); err != nil {
		return creds, fmt.Errorf("invalid data in keyring for %s: %v", credentialsName, err)
	}
	return creds, nil
}

func (ck *CredentialKeyring) Set(credentialsName string, creds Credentials) error {
	if IsCacheKey(credentialsName) {
		return fmt.Errorf("%w: %q clashes with a session cache name", ErrInvalidArgument, credentialsName)
	}

	bytes, err := json.Marshal(creds)
	if err != nil {
		return err
	}

	return ck.Keyring.Set(keyring.Item{
		Key:   credentialsName,
		Label: fmt.Sprintf("aws-session (%s)", credentialsName),
		Data:  bytes,

		// specific Keychain settings
		KeychainNotTrustApplication: true,
	})
}

func (ck *CredentialKeyring) Remove(credentialsName string) error {
	return ck.Keyring.Remove(credentialsName)
}
