package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/99designs/keyring"
	log "github.com/sirupsen/logrus"
)

// KeyringStore keeps cached sessions as items in an OS keyring, keyed by the
// same names FileStore uses for its files.
type KeyringStore struct {
	Keyring keyring.Keyring
}

func (ks *KeyringStore) Load(key CacheKey) (*CachedSession, error) {
	item, err := ks.Keyring.Get(key.String())
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("%w: keyring item %s: %v", ErrStorageFailure, key, err)
	}

	sess, err := unmarshalCachedSession(item.Data)
	if err != nil {
		log.Printf("KeyringStore: ignoring invalid data for %s", key)
		return nil, fmt.Errorf("keyring item %s: %w", key, err)
	}
	return sess, nil
}

func (ks *KeyringStore) Save(key CacheKey, sess *CachedSession) error {
	b, err := marshalCachedSession(sess)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	err = ks.Keyring.Set(keyring.Item{
		Key:         key.String(),
		Data:        b,
		Label:       fmt.Sprintf("aws-session %s session for %s (expires %s)", key.Tier, key.Profile, sess.Expiration.Format(time.RFC3339)),
		Description: "aws-session session",
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}

func (ks *KeyringStore) Delete(key CacheKey) error {
	err := ks.Keyring.Remove(key.String())
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}

func (ks *KeyringStore) Keys() (kk []CacheKey, err error) {
	allKeys, err := ks.Keyring.Keys()
	if err != nil {
		return nil, err
	}

	for _, s := range allKeys {
		if k, err := ParseCacheKey(s); err == nil {
			kk = append(kk, k)
		}
	}
	return kk, nil
}
