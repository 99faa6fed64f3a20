package session

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	ini "gopkg.in/ini.v1"
)

const defaultSectionName = "default"

// ConfigFile is an abstraction over an AWS shared config or credentials file
type ConfigFile struct {
	Path    string
	iniFile *ini.File
}

// ProfileSection is a profile section of ~/.aws/config or ~/.aws/credentials
type ProfileSection struct {
	Name                 string `ini:"-"`
	Region               string `ini:"region"`
	RoleARN              string `ini:"role_arn"`
	MfaSerial            string `ini:"mfa_serial"`
	ExternalID           string `ini:"external_id"`
	RoleSessionName      string `ini:"role_session_name"`
	SourceProfile        string `ini:"source_profile"`
	AccessKeyID          string `ini:"aws_access_key_id"`
	SecretAccessKey      string `ini:"aws_secret_access_key"`
	STSLifetime          int    `ini:"sts_lifetime"`
	STSFilename          string `ini:"sts_filename"`
	RoleLifetime         int    `ini:"role_lifetime"`
	RoleFilename         string `ini:"role_filename"`
	SessionSavePath      string `ini:"session_save_path"`
	ExpiryWindow         int    `ini:"expiry_window"`
	STSRegionalEndpoints string `ini:"sts_regional_endpoints"`
	Debug                int    `ini:"debug"`
}

// merge fills the unset fields of s from other
func (s ProfileSection) merge(other ProfileSection) ProfileSection {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&s.Region, other.Region)
	fill(&s.RoleARN, other.RoleARN)
	fill(&s.MfaSerial, other.MfaSerial)
	fill(&s.ExternalID, other.ExternalID)
	fill(&s.RoleSessionName, other.RoleSessionName)
	fill(&s.SourceProfile, other.SourceProfile)
	fill(&s.AccessKeyID, other.AccessKeyID)
	fill(&s.SecretAccessKey, other.SecretAccessKey)
	fill(&s.STSFilename, other.STSFilename)
	fill(&s.RoleFilename, other.RoleFilename)
	fill(&s.SessionSavePath, other.SessionSavePath)
	fill(&s.STSRegionalEndpoints, other.STSRegionalEndpoints)
	if s.STSLifetime == 0 {
		s.STSLifetime = other.STSLifetime
	}
	if s.RoleLifetime == 0 {
		s.RoleLifetime = other.RoleLifetime
	}
	if s.ExpiryWindow == 0 {
		s.ExpiryWindow = other.ExpiryWindow
	}
	if s.Debug == 0 {
		s.Debug = other.Debug
	}
	return s
}

// Options returns the run options set in the section
func (s ProfileSection) Options() Options {
	return Options{
		SessionTokenLifetime: time.Duration(s.STSLifetime) * time.Second,
		RoleLifetime:         time.Duration(s.RoleLifetime) * time.Second,
		SessionTokenFilename: s.STSFilename,
		RoleFilename:         s.RoleFilename,
		SessionSavePath:      s.SessionSavePath,
		ExpiryWindow:         time.Duration(s.ExpiryWindow) * time.Second,
		STSRegionalEndpoints: s.STSRegionalEndpoints,
		Debug:                s.Debug,
	}
}

// ConfigFilePath returns $AWS_CONFIG_FILE or ~/.aws/config
func ConfigFilePath() (string, error) {
	return homedir.Expand(envOr("AWS_CONFIG_FILE", config.DefaultSharedConfigFilename()))
}

// CredentialsFilePath returns $AWS_SHARED_CREDENTIALS_FILE or ~/.aws/credentials
func CredentialsFilePath() (string, error) {
	return homedir.Expand(envOr("AWS_SHARED_CREDENTIALS_FILE", config.DefaultSharedCredentialsFilename()))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadConfigFile loads an AWS ini file. A missing file yields an empty config.
func LoadConfigFile(path string) (*ConfigFile, error) {
	cfg := &ConfigFile{Path: path}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Debugf("Config file %s doesn't exist", path)
		cfg.iniFile = ini.Empty()
		return cfg, nil
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		AllowNestedValues:   true,
		InsensitiveSections: false,
		InsensitiveKeys:     true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("%w: error parsing config file %s: %v", ErrInvalidArgument, path, err)
	}
	cfg.iniFile = f
	return cfg, nil
}

// ProfileSection returns the section for a profile, accepting both the
// config file form `[profile NAME]` and the credentials file form `[NAME]`
func (c *ConfigFile) ProfileSection(name string) (ProfileSection, bool) {
	for _, sectionName := range []string{"profile " + name, name} {
		if name == defaultSectionName && sectionName != defaultSectionName {
			continue
		}
		section, err := c.iniFile.GetSection(sectionName)
		if err != nil {
			continue
		}
		ps := ProfileSection{Name: name}
		if err := section.MapTo(&ps); err != nil {
			log.Warnf("Ignoring invalid section [%s] in %s: %v", sectionName, c.Path, err)
			continue
		}
		return ps, true
	}
	return ProfileSection{Name: name}, false
}

// ProfileNames returns the names of all profiles in the file
func (c *ConfigFile) ProfileNames() []string {
	var names []string
	for _, section := range c.iniFile.SectionStrings() {
		if section == ini.DefaultSection {
			continue
		}
		names = append(names, strings.TrimPrefix(section, "profile "))
	}
	return names
}

// ConfigLoader resolves a Profile and its Options from the AWS config and
// credentials files, the keyring and the environment
type ConfigLoader struct {
	ConfigFile      *ConfigFile
	CredentialsFile *ConfigFile
	Keyring         *CredentialKeyring
}

// ProfileNames returns the names of all profiles known to the loader
func (cl *ConfigLoader) ProfileNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, f := range []*ConfigFile{cl.ConfigFile, cl.CredentialsFile} {
		if f == nil {
			continue
		}
		for _, n := range f.ProfileNames() {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names
}

func (cl *ConfigLoader) section(name string) (ProfileSection, bool) {
	ps := ProfileSection{Name: name}
	var found bool
	if cl.ConfigFile != nil {
		if s, ok := cl.ConfigFile.ProfileSection(name); ok {
			ps, found = s, true
		}
	}
	if cl.CredentialsFile != nil {
		if s, ok := cl.CredentialsFile.ProfileSection(name); ok {
			ps, found = ps.merge(s), true
		}
	}
	return ps, found
}

// LoadProfile resolves profileName into a Profile and the Options set in
// its section
func (cl *ConfigLoader) LoadProfile(profileName string) (Profile, Options, error) {
	section, ok := cl.section(profileName)
	if !ok {
		return Profile{}, Options{}, fmt.Errorf("%w: profile %s not found", ErrInvalidArgument, profileName)
	}

	if section.SourceProfile != "" && section.SourceProfile != profileName {
		source, ok := cl.section(section.SourceProfile)
		if !ok {
			return Profile{}, Options{}, fmt.Errorf("%w: profile %s: source_profile %s not found", ErrInvalidArgument, profileName, section.SourceProfile)
		}
		log.Debugf("profile %s: using source_profile %s", profileName, section.SourceProfile)
		section.AccessKeyID, section.SecretAccessKey = pickKeys(section, source)
		if section.Region == "" {
			section.Region = source.Region
		}
	}

	p := Profile{
		Name:            profileName,
		Region:          section.Region,
		RoleARN:         section.RoleARN,
		MfaSerial:       section.MfaSerial,
		ExternalID:      section.ExternalID,
		RoleSessionName: section.RoleSessionName,
		AccessKeyID:     section.AccessKeyID,
		SecretAccessKey: section.SecretAccessKey,
	}

	if p.AccessKeyID == "" || p.SecretAccessKey == "" {
		cl.keyringCredentials(&p, section.SourceProfile)
	}

	env, err := config.NewEnvConfig()
	if err != nil {
		return Profile{}, Options{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if p.AccessKeyID == "" || p.SecretAccessKey == "" {
		if env.Credentials.HasKeys() {
			log.Debugf("profile %s: using base credentials from environment", profileName)
			p.AccessKeyID = env.Credentials.AccessKeyID
			p.SecretAccessKey = env.Credentials.SecretAccessKey
		}
	}
	if p.Region == "" {
		p.Region = env.Region
	}
	if p.Region == "" {
		p.Region = DefaultRegion
	}

	return p, section.Options(), nil
}

func pickKeys(section, source ProfileSection) (string, string) {
	if section.AccessKeyID != "" && section.SecretAccessKey != "" {
		return section.AccessKeyID, section.SecretAccessKey
	}
	return source.AccessKeyID, source.SecretAccessKey
}

// keyringCredentials fills in base keys stored with `aws-session add` for the
// profile or its source profile. An unavailable keyring is not fatal because
// the environment may still provide keys.
func (cl *ConfigLoader) keyringCredentials(p *Profile, sourceProfile string) {
	if cl.Keyring == nil {
		return
	}
	for _, name := range []string{p.Name, sourceProfile} {
		if name == "" {
			continue
		}
		creds, err := cl.Keyring.Get(name)
		if errors.Is(err, keyring.ErrKeyNotFound) {
			continue
		} else if err != nil {
			log.Warnf("profile %s: skipping keyring credentials for %s: %v", p.Name, name, err)
			return
		}
		log.Debugf("profile %s: using stored credentials %s", p.Name, name)
		p.AccessKeyID = creds.AccessKeyID
		p.SecretAccessKey = creds.SecretAccessKey
		return
	}
}
