package cli

import (
	"sync"

	"github.com/99designs/keyring"
	log "github.com/sirupsen/logrus"
)

// lazyKeyring defers opening the OS keyring until an item is accessed, so
// commands served entirely from the file cache never touch it
type lazyKeyring struct {
	config keyring.Config

	once sync.Once
	kr   keyring.Keyring
	err  error
}

func (l *lazyKeyring) open() (keyring.Keyring, error) {
	l.once.Do(func() {
		log.Debugf("Opening keyring %s", l.config.ServiceName)
		l.kr, l.err = keyring.Open(l.config)
	})
	return l.kr, l.err
}

func (l *lazyKeyring) Get(key string) (keyring.Item, error) {
	kr, err := l.open()
	if err != nil {
		return keyring.Item{}, err
	}
	return kr.Get(key)
}

func (l *lazyKeyring) GetMetadata(key string) (keyring.Metadata, error) {
	kr, err := l.open()
	if err != nil {
		return keyring.Metadata{}, err
	}
	return kr.GetMetadata(key)
}

func (l *lazyKeyring) Set(item keyring.Item) error {
	kr, err := l.open()
	if err != nil {
		return err
	}
	return kr.Set(item)
}

func (l *lazyKeyring) Remove(key string) error {
	kr, err := l.open()
	if err != nil {
		return err
	}
	return kr.Remove(key)
}

func (l *lazyKeyring) Keys() ([]string, error) {
	kr, err := l.open()
	if err != nil {
		return nil, err
	}
	return kr.Keys()
}
