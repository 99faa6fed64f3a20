package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/99designs/keyring"
	"github.com/alecthomas/kingpin"
	log "github.com/sirupsen/logrus"

	"github.com/awssession/aws-session/prompt"
	"github.com/awssession/aws-session/session"
)

const (
	KeyringName = "aws-session"

	// FileBackend keeps cached sessions as plain JSON files in the session save path
	FileBackend = "file"
)

var (
	promptsAvailable  = prompt.Available()
	backendsAvailable = sessionBackends()
)

type AwsSession struct {
	Debug           int
	KeyringConfig   keyring.Config
	KeyringBackend  string
	PromptDriver    string
	SessionSavePath string
	ConfigFile      string

	keyringImpl  keyring.Keyring
	configLoader *session.ConfigLoader
}

// sessionBackends lists the plain file store plus every keyring backend
func sessionBackends() []string {
	backends := []string{FileBackend}
	for _, backendType := range keyring.AvailableBackends() {
		if string(backendType) != FileBackend {
			backends = append(backends, string(backendType))
		}
	}
	return backends
}

// Keyring returns the keyring holding base credentials, and cached sessions
// when a keyring backend is selected. It is opened on first use.
func (a *AwsSession) Keyring() keyring.Keyring {
	if a.keyringImpl == nil {
		cfg := a.KeyringConfig
		if a.KeyringBackend != "" && a.KeyringBackend != FileBackend {
			cfg.AllowedBackends = []keyring.BackendType{keyring.BackendType(a.KeyringBackend)}
		}
		a.keyringImpl = &lazyKeyring{config: cfg}
	}
	return a.keyringImpl
}

func (a *AwsSession) ConfigLoader() (*session.ConfigLoader, error) {
	if a.configLoader != nil {
		return a.configLoader, nil
	}

	configPath := a.ConfigFile
	if configPath == "" {
		var err error
		if configPath, err = session.ConfigFilePath(); err != nil {
			return nil, err
		}
	}
	configFile, err := session.LoadConfigFile(configPath)
	if err != nil {
		return nil, err
	}

	credentialsPath, err := session.CredentialsFilePath()
	if err != nil {
		return nil, err
	}
	credentialsFile, err := session.LoadConfigFile(credentialsPath)
	if err != nil {
		return nil, err
	}

	a.configLoader = &session.ConfigLoader{
		ConfigFile:      configFile,
		CredentialsFile: credentialsFile,
		Keyring:         &session.CredentialKeyring{Keyring: a.Keyring()},
	}
	return a.configLoader, nil
}

// SessionStore returns the store for cached sessions in the configured backend
func (a *AwsSession) SessionStore(opts session.Options, profileName string) session.ListableStore {
	if a.KeyringBackend != FileBackend {
		return &session.KeyringStore{Keyring: a.Keyring()}
	}
	return &session.FileStore{
		Dir:       opts.SessionSavePath,
		Filenames: opts.Filenames(profileName),
	}
}

// DefaultSessionStore returns the session store without any profile overrides
func (a *AwsSession) DefaultSessionStore() (session.ListableStore, error) {
	opts, err := session.Options{SessionSavePath: a.SessionSavePath}.ApplyDefaults()
	if err != nil {
		return nil, err
	}
	return a.SessionStore(opts, ""), nil
}

func (a *AwsSession) MustGetProfileNames() []string {
	loader, err := a.ConfigLoader()
	if err != nil {
		log.Fatalf("Error loading AWS config: %s", err.Error())
	}
	return loader.ProfileNames()
}

// setLogLevel maps the debug counter to a log level: warnings only at 0,
// informational output at 1, everything at 2 and above
func setLogLevel(debug int) {
	switch {
	case debug >= 2:
		log.SetLevel(log.DebugLevel)
		keyring.Debug = true
	case debug == 1:
		log.SetLevel(log.InfoLevel)
	default:
		log.SetLevel(log.WarnLevel)
	}
}

func ConfigureGlobals(app *kingpin.Application) *AwsSession {
	a := &AwsSession{
		KeyringConfig: keyring.Config{
			ServiceName:             KeyringName,
			KeychainName:            KeyringName,
			FilePasswordFunc:        fileKeyringPassphrasePrompt,
			LibSecretCollectionName: "awssession",
			KWalletAppID:            KeyringName,
			KWalletFolder:           KeyringName,
			WinCredPrefix:           KeyringName,
		},
	}

	app.Flag("debug", "Show informational output, repeat for debugging output").
		Short('d').
		CounterVar(&a.Debug)

	app.Flag("backend", fmt.Sprintf("Session cache backend to use %v", backendsAvailable)).
		Default(FileBackend).
		OverrideDefaultFromEnvar("AWS_SESSION_BACKEND").
		EnumVar(&a.KeyringBackend, backendsAvailable...)

	app.Flag("prompt", fmt.Sprintf("Prompt driver to use %v", promptsAvailable)).
		Default("terminal").
		OverrideDefaultFromEnvar("AWS_SESSION_PROMPT").
		EnumVar(&a.PromptDriver, promptsAvailable...)

	app.Flag("session-save-path", "Directory holding cached session files").
		OverrideDefaultFromEnvar("AWS_SESSION_SAVE_PATH").
		StringVar(&a.SessionSavePath)

	app.Flag("config-file", "AWS config file to read profiles from").
		OverrideDefaultFromEnvar("AWS_CONFIG_FILE").
		StringVar(&a.ConfigFile)

	app.PreAction(func(c *kingpin.ParseContext) error {
		log.SetOutput(os.Stderr)
		if a.Debug == 0 {
			if n, err := strconv.Atoi(os.Getenv("AWS_SESSION_DEBUG")); err == nil {
				a.Debug = n
			}
		}
		setLogLevel(a.Debug)
		return nil
	})

	return a
}

func fileKeyringPassphrasePrompt(message string) (string, error) {
	if password, ok := os.LookupEnv("AWS_SESSION_FILE_PASSPHRASE"); ok {
		return password, nil
	}
	return prompt.TerminalSecretPrompt(fmt.Sprintf("%s: ", message))
}
