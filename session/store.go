package session

// Store persists cached sessions by key. It performs no expiry logic:
// deciding whether a session is usable is the Manager's job.
type Store interface {
	// Load returns the session stored under key, or nil and no error when
	// nothing is stored there. Unreadable or malformed entries produce an
	// error wrapping ErrCorruptCache.
	Load(key CacheKey) (*CachedSession, error)

	// Save replaces whatever is stored under key
	Save(key CacheKey, s *CachedSession) error

	// Delete removes the entry under key. Deleting a missing key is not an error.
	Delete(key CacheKey) error
}

// ListableStore is a Store that can enumerate what it holds
type ListableStore interface {
	Store
	Keys() ([]CacheKey, error)
}

// RemoveForProfile deletes every cached tier of profileName and returns how
// many entries were removed.
func RemoveForProfile(s ListableStore, profileName string) (n int, err error) {
	keys, err := s.Keys()
	if err != nil {
		return 0, err
	}
	for _, k := range keys {
		if k.Profile != profileName {
			continue
		}
		if err = s.Delete(k); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// RemoveAll deletes every cached tier held by the store
func RemoveAll(s ListableStore) (n int, err error) {
	keys, err := s.Keys()
	if err != nil {
		return 0, err
	}
	for _, k := range keys {
		if err = s.Delete(k); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
