package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin"
	ini "gopkg.in/ini.v1"

	"github.com/awssession/aws-session/iso8601"
	"github.com/awssession/aws-session/session"
)

const (
	FormatTypeEnv  = "env"
	FormatTypeJSON = "json"
	FormatTypeINI  = "ini"
)

type ExportCommandInput struct {
	SessionFlags
	Format string
}

func ConfigureExportCommand(app *kingpin.Application, a *AwsSession) {
	input := ExportCommandInput{}

	cmd := app.Command("export", "Export role credentials to the shell, or as a credential_process")
	configureSessionFlags(cmd, a, &input.SessionFlags)

	cmd.Flag("format", fmt.Sprintf("Format to output credentials. Valid values are %s, %s and %s", FormatTypeEnv, FormatTypeJSON, FormatTypeINI)).
		Default(FormatTypeEnv).
		EnumVar(&input.Format, FormatTypeEnv, FormatTypeJSON, FormatTypeINI)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := ExportCommand(context.Background(), input, a)
		app.FatalIfError(err, "")
		return nil
	})
}

func ExportCommand(ctx context.Context, input ExportCommandInput, a *AwsSession) error {
	m, err := a.NewManager(input.SessionFlags)
	if err != nil {
		return err
	}
	creds, err := m.Start(ctx)
	if err != nil {
		return err
	}

	switch input.Format {
	case FormatTypeJSON:
		return printJSON(os.Stdout, creds)
	case FormatTypeINI:
		return printINI(os.Stdout, m.Profile, creds)
	default:
		return printEnv(os.Stdout, m.Profile.Region, creds)
	}
}

// credentialProcessOutput is the credential_process output format, see
// https://docs.aws.amazon.com/cli/latest/userguide/cli-configure-sourcing-external.html
type credentialProcessOutput struct {
	Version         int    `json:"Version"`
	AccessKeyID     string `json:"AccessKeyId"`
	SecretAccessKey string `json:"SecretAccessKey"`
	SessionToken    string `json:"SessionToken"`
	Expiration      string `json:"Expiration"`
}

func printJSON(w io.Writer, creds session.CredentialSet) error {
	b, err := json.MarshalIndent(credentialProcessOutput{
		Version:         1,
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
		Expiration:      iso8601.Format(creds.Expires),
	}, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printINI(w io.Writer, profile session.Profile, creds session.CredentialSet) error {
	f := ini.Empty()
	s, err := f.NewSection(profile.Name)
	if err != nil {
		return err
	}
	for _, kv := range [][2]string{
		{"aws_access_key_id", creds.AccessKeyID},
		{"aws_secret_access_key", creds.SecretAccessKey},
		{"aws_session_token", creds.SessionToken},
		{"aws_credential_expiration", iso8601.Format(creds.Expires)},
		{"region", profile.Region},
	} {
		if _, err = s.NewKey(kv[0], kv[1]); err != nil {
			return err
		}
	}

	ini.PrettyFormat = false
	_, err = f.WriteTo(w)
	return err
}

func printEnv(w io.Writer, region string, creds session.CredentialSet) error {
	env := environ{}
	env.setCredentials(region, creds)
	for _, kv := range env {
		if _, err := fmt.Fprintln(w, kv); err != nil {
			return err
		}
	}
	return nil
}
