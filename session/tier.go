package session

import (
	"fmt"
	"net/url"
	"regexp"
)

// Tier is one of the two credential stages. AssumedRole depends on SessionToken.
type Tier int

const (
	SessionToken Tier = iota
	AssumedRole
)

// Tiers lists every tier in dependency order.
var Tiers = []Tier{SessionToken, AssumedRole}

func (t Tier) String() string {
	switch t {
	case SessionToken:
		return "sts"
	case AssumedRole:
		return "role"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// ParseTier is the inverse of Tier.String
func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown tier %q", ErrInvalidArgument, s)
}

// CacheKey identifies the cached artifact of one tier of one profile
type CacheKey struct {
	Profile string
	Tier    Tier
}

const cacheKeySuffix = "-session.json"

var cacheKeyPattern = regexp.MustCompile(`^(?P<profile>.+)_(?P<tier>sts|role)-session\.json$`)

// String returns the default file name for the key, <profile>_<tier>-session.json.
// The profile name is path-escaped so it never contains a separator, which
// keeps the mapping injective across profiles and tiers.
func (k CacheKey) String() string {
	return fmt.Sprintf("%s_%s%s", url.PathEscape(k.Profile), k.Tier, cacheKeySuffix)
}

// ParseCacheKey is the inverse of CacheKey.String
func ParseCacheKey(s string) (CacheKey, error) {
	matches := cacheKeyPattern.FindStringSubmatch(s)
	if len(matches) == 0 {
		return CacheKey{}, fmt.Errorf("failed to parse session cache key: %s", s)
	}

	profile, err := url.PathUnescape(matches[1])
	if err != nil {
		return CacheKey{}, fmt.Errorf("failed to parse session cache key %s: %w", s, err)
	}
	tier, err := ParseTier(matches[2])
	if err != nil {
		return CacheKey{}, err
	}

	return CacheKey{Profile: profile, Tier: tier}, nil
}

// IsCacheKey reports whether s is a name produced by CacheKey.String
func IsCacheKey(s string) bool {
	_, err := ParseCacheKey(s)
	return err == nil
}
