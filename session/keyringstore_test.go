package session

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/google/go-cmp/cmp"
)

func TestKeyringStore(t *testing.T) {
	kr := keyring.NewArrayKeyring(nil)
	s := &KeyringStore{Keyring: kr}
	key := CacheKey{"dev", AssumedRole}

	if got, err := s.Load(key); err != nil || got != nil {
		t.Fatalf("Load on empty keyring = %v, %v; want nil, nil", got, err)
	}
	if err := s.Save(key, exampleSession); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(key)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(exampleSession, got); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}

	if err := kr.Set(keyring.Item{Key: "dev"}); err != nil {
		t.Fatal(err)
	}
	keys, err := s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]CacheKey{key}, keys); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}

	if err := s.Delete(key); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(key); err != nil {
		t.Errorf("second Delete returned %v", err)
	}
}

func TestKeyringStoreCorruptItem(t *testing.T) {
	kr := keyring.NewArrayKeyring([]keyring.Item{
		{Key: "dev_sts-session.json", Data: []byte("not json")},
	})
	s := &KeyringStore{Keyring: kr}

	_, err := s.Load(CacheKey{"dev", SessionToken})
	if !errors.Is(err, ErrCorruptCache) {
		t.Fatalf("expected ErrCorruptCache, got %v", err)
	}
}

func TestKeyringStoreReadFailure(t *testing.T) {
	kr := &deniedKeyring{keyring.NewArrayKeyring([]keyring.Item{
		{Key: "dev_role-session.json", Data: []byte(`{}`)},
	})}
	s := &KeyringStore{Keyring: kr}

	_, err := s.Load(CacheKey{"dev", AssumedRole})
	if !errors.Is(err, ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure, got %v", err)
	}
	if errors.Is(err, ErrCorruptCache) {
		t.Errorf("a keyring access failure must not be reported as a corrupt cache: %v", err)
	}
}

type deniedKeyring struct {
	keyring.Keyring
}

func (deniedKeyring) Get(string) (keyring.Item, error) {
	return keyring.Item{}, errors.New("access denied by user")
}

func TestCredentialKeyring(t *testing.T) {
	kr := keyring.NewArrayKeyring(nil)
	ck := &CredentialKeyring{Keyring: kr}
	creds := Credentials{AccessKeyID: "AKIABASE0001", SecretAccessKey: "base-secret"}

	if err := ck.Set("dev", creds); err != nil {
		t.Fatal(err)
	}
	if err := (&KeyringStore{Keyring: kr}).Save(CacheKey{"dev", SessionToken}, exampleSession); err != nil {
		t.Fatal(err)
	}

	names, err := ck.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"dev"}, names); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}

	got, err := ck.Get("dev")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(creds, got); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}

	if has, err := ck.Has("prod"); err != nil || has {
		t.Errorf("Has(prod) = %v, %v; want false, nil", has, err)
	}
	if err := ck.Set("dev_sts-session.json", creds); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for a cache key name, got %v", err)
	}
}
