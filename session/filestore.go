package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// FileStore keeps one JSON file per cache key in Dir
type FileStore struct {
	Dir string

	// Filenames overrides the file used for specific keys. Relative names
	// are resolved inside Dir.
	Filenames map[CacheKey]string
}

func (s *FileStore) path(key CacheKey) string {
	if name, ok := s.Filenames[key]; ok && name != "" {
		if filepath.IsAbs(name) {
			return filepath.Clean(name)
		}
		return filepath.Join(s.Dir, name)
	}
	return filepath.Join(s.Dir, key.String())
}

func (s *FileStore) Load(key CacheKey) (*CachedSession, error) {
	path := s.path(key)

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptCache, path, err)
	}

	sess, err := unmarshalCachedSession(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Debugf("Read %s session for %s from %s", key.Tier, key.Profile, path)
	return sess, nil
}

// Save writes the session to a temporary file next to its destination and
// renames it into place, so a reader sees either the old or the new file.
func (s *FileStore) Save(key CacheKey, sess *CachedSession) error {
	path := s.path(key)
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrStorageFailure, dir, err)
	}

	b, err := marshalCachedSession(sess)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	tmpName := tmp.Name()

	if err = writeAndClose(tmp, b); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %v", ErrStorageFailure, tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	log.Debugf("Wrote %s session for %s to %s", key.Tier, key.Profile, path)
	return nil
}

func writeAndClose(f *os.File, b []byte) error {
	if err := f.Chmod(0600); err != nil {
		f.Close()
		return err
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *FileStore) Delete(key CacheKey) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}

// Keys lists the entries in Dir that use the default naming pattern. Entries
// stored under overridden file names are not discoverable.
func (s *FileStore) Keys() ([]CacheKey, error) {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var keys []CacheKey
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if k, err := ParseCacheKey(e.Name()); err == nil {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
