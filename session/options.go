package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
)

const (
	DefaultSessionTokenLifetime = 36 * time.Hour
	DefaultRoleLifetime         = time.Hour

	MinLifetime                 = 15 * time.Minute
	MaxSessionTokenLifetime     = 36 * time.Hour
	MaxRoleLifetime             = 12 * time.Hour
	defaultSessionSaveDirectory = "aws-session"
)

// Options controls lifetimes, cache locations and logging for a run
type Options struct {
	SessionTokenLifetime time.Duration
	RoleLifetime         time.Duration

	// SessionTokenFilename and RoleFilename replace the default cache file
	// names of one profile. Profiles sharing an override share its file.
	SessionTokenFilename string
	RoleFilename         string

	SessionSavePath      string
	ExpiryWindow         time.Duration
	STSRegionalEndpoints string
	Debug                int
}

// Merge returns a copy of o with every non-zero field of override applied
func (o Options) Merge(override Options) Options {
	if override.SessionTokenLifetime != 0 {
		o.SessionTokenLifetime = override.SessionTokenLifetime
	}
	if override.RoleLifetime != 0 {
		o.RoleLifetime = override.RoleLifetime
	}
	if override.SessionTokenFilename != "" {
		o.SessionTokenFilename = override.SessionTokenFilename
	}
	if override.RoleFilename != "" {
		o.RoleFilename = override.RoleFilename
	}
	if override.SessionSavePath != "" {
		o.SessionSavePath = override.SessionSavePath
	}
	if override.ExpiryWindow != 0 {
		o.ExpiryWindow = override.ExpiryWindow
	}
	if override.STSRegionalEndpoints != "" {
		o.STSRegionalEndpoints = override.STSRegionalEndpoints
	}
	if override.Debug != 0 {
		o.Debug = override.Debug
	}
	return o
}

// ApplyDefaults fills in unset lifetimes and the session save path
func (o Options) ApplyDefaults() (Options, error) {
	if o.SessionTokenLifetime == 0 {
		o.SessionTokenLifetime = DefaultSessionTokenLifetime
	}
	if o.RoleLifetime == 0 {
		o.RoleLifetime = DefaultRoleLifetime
	}

	var err error
	if o.SessionSavePath == "" {
		o.SessionSavePath, err = DefaultSessionSavePath()
	} else {
		o.SessionSavePath, err = homedir.Expand(o.SessionSavePath)
	}
	if err != nil {
		return o, fmt.Errorf("%w: session save path: %v", ErrStorageFailure, err)
	}
	return o, nil
}

// Validate checks the lifetimes are within the bounds STS accepts
func (o Options) Validate() error {
	if o.SessionTokenLifetime < MinLifetime || o.SessionTokenLifetime > MaxSessionTokenLifetime {
		return fmt.Errorf("%w: sts lifetime %s must be between %s and %s", ErrInvalidArgument, o.SessionTokenLifetime, MinLifetime, MaxSessionTokenLifetime)
	}
	if o.RoleLifetime < MinLifetime || o.RoleLifetime > MaxRoleLifetime {
		return fmt.Errorf("%w: role lifetime %s must be between %s and %s", ErrInvalidArgument, o.RoleLifetime, MinLifetime, MaxRoleLifetime)
	}
	if o.ExpiryWindow < 0 {
		return fmt.Errorf("%w: expiry window must not be negative", ErrInvalidArgument)
	}
	if o.ExpiryWindow >= o.SessionTokenLifetime || o.ExpiryWindow >= o.RoleLifetime {
		return fmt.Errorf("%w: expiry window %s must be shorter than the sts and role lifetimes", ErrInvalidArgument, o.ExpiryWindow)
	}
	if o.SessionTokenFilename != "" && o.RoleFilename != "" {
		if err := o.ValidateFilenames(""); err != nil {
			return err
		}
	}
	switch o.STSRegionalEndpoints {
	case "", "legacy", "regional":
	default:
		return fmt.Errorf("%w: sts_regional_endpoints must be legacy or regional, got %q", ErrInvalidArgument, o.STSRegionalEndpoints)
	}
	return nil
}

// Filenames returns the per-tier file name overrides for profileName
func (o Options) Filenames(profileName string) map[CacheKey]string {
	names := map[CacheKey]string{}
	if o.SessionTokenFilename != "" {
		names[CacheKey{profileName, SessionToken}] = o.SessionTokenFilename
	}
	if o.RoleFilename != "" {
		names[CacheKey{profileName, AssumedRole}] = o.RoleFilename
	}
	return names
}

// CachePath returns the file key is cached in, applying the overrides for its
// profile
func (o Options) CachePath(key CacheKey) string {
	name := o.Filenames(key.Profile)[key]
	if name == "" {
		name = key.String()
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(o.SessionSavePath, name)
}

// ValidateFilenames checks that the tiers of profileName are cached in
// different files
func (o Options) ValidateFilenames(profileName string) error {
	sts := o.CachePath(CacheKey{profileName, SessionToken})
	role := o.CachePath(CacheKey{profileName, AssumedRole})
	if sts == role {
		return fmt.Errorf("%w: sts and role sessions would both be cached in %s", ErrInvalidArgument, sts)
	}
	return nil
}

// DefaultSessionSavePath returns $XDG_CACHE_HOME/aws-session, or
// ~/.cache/aws-session when XDG_CACHE_HOME is unset
func DefaultSessionSavePath() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("XDG_CACHE_HOME")); dir != "" {
		return filepath.Join(dir, defaultSessionSaveDirectory), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", defaultSessionSaveDirectory), nil
}
