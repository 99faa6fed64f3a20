package cli

import (
	"time"

	"github.com/alecthomas/kingpin"
	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"

	"github.com/awssession/aws-session/prompt"
	"github.com/awssession/aws-session/session"
)

// SessionFlags are the per-run settings shared by the commands that issue
// credentials
type SessionFlags struct {
	ProfileName  string
	STSLifetime  time.Duration
	RoleLifetime time.Duration
	STSFilename  string
	RoleFilename string
	MfaToken     string
}

func configureSessionFlags(cmd *kingpin.CmdClause, a *AwsSession, f *SessionFlags) {
	cmd.Flag("sts-lifetime", "Lifetime of the MFA session token. Defaults to 36h").
		DurationVar(&f.STSLifetime)

	cmd.Flag("role-lifetime", "Lifetime of the assumed role session. Defaults to 1h").
		DurationVar(&f.RoleLifetime)

	cmd.Flag("sts-filename", "File name of the cached session token").
		StringVar(&f.STSFilename)

	cmd.Flag("role-filename", "File name of the cached role session").
		StringVar(&f.RoleFilename)

	cmd.Flag("mfa-token", "The MFA token to use").
		Short('t').
		StringVar(&f.MfaToken)

	cmd.Arg("profile", "Name of the profile").
		Required().
		HintAction(a.MustGetProfileNames).
		StringVar(&f.ProfileName)
}

// NewManager resolves the profile and options for a run and wires up the
// session manager that serves it
func (a *AwsSession) NewManager(f SessionFlags) (*session.Manager, error) {
	loader, err := a.ConfigLoader()
	if err != nil {
		return nil, err
	}
	profile, profileOpts, err := loader.LoadProfile(f.ProfileName)
	if err != nil {
		return nil, err
	}

	opts := profileOpts.Merge(session.Options{
		SessionTokenLifetime: f.STSLifetime,
		RoleLifetime:         f.RoleLifetime,
		SessionTokenFilename: f.STSFilename,
		RoleFilename:         f.RoleFilename,
		SessionSavePath:      a.SessionSavePath,
		Debug:                a.Debug,
	})
	if opts, err = opts.ApplyDefaults(); err != nil {
		return nil, err
	}
	for _, name := range []*string{&opts.SessionTokenFilename, &opts.RoleFilename} {
		if *name, err = homedir.Expand(*name); err != nil {
			return nil, err
		}
	}
	if opts.Debug > a.Debug {
		setLogLevel(opts.Debug)
	}

	mfaPrompt := prompt.Fixed(f.MfaToken)
	if f.MfaToken == "" {
		if mfaPrompt, err = prompt.Method(a.PromptDriver); err != nil {
			return nil, err
		}
	}

	username, err := session.CurrentUsername()
	if err != nil {
		log.Debugf("Unable to determine the current user: %v", err)
	}

	mfaDevice := &session.IAMMfaDevice{Region: profile.Region}

	return &session.Manager{
		Profile: profile,
		Options: opts,
		Store:   a.SessionStore(opts, profile.Name),
		Exchanger: &session.STSExchanger{
			Region:               profile.Region,
			STSRegionalEndpoints: opts.STSRegionalEndpoints,
		},
		Prompt:    mfaPrompt,
		MfaDevice: mfaDevice.Serial,
		Username:  username,
	}, nil
}
