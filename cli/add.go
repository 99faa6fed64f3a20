package cli

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin"

	"github.com/awssession/aws-session/prompt"
	"github.com/awssession/aws-session/session"
)

type AddCommandInput struct {
	ProfileName string
	FromEnv     bool
}

func ConfigureAddCommand(app *kingpin.Application, a *AwsSession) {
	input := AddCommandInput{}

	cmd := app.Command("add", "Store base credentials for a profile in the keyring, prompts if none provided")

	cmd.Arg("profile", "Name of the profile").
		Required().
		StringVar(&input.ProfileName)

	cmd.Flag("env", "Read the credentials from the environment (AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY)").
		BoolVar(&input.FromEnv)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := AddCommand(input, a)
		app.FatalIfError(err, "add")
		return nil
	})
}

func AddCommand(input AddCommandInput, a *AwsSession) error {
	var accessKeyID, secretKey string

	if input.FromEnv {
		if accessKeyID = os.Getenv("AWS_ACCESS_KEY_ID"); accessKeyID == "" {
			return fmt.Errorf("missing value for AWS_ACCESS_KEY_ID")
		}
		if secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY"); secretKey == "" {
			return fmt.Errorf("missing value for AWS_SECRET_ACCESS_KEY")
		}
	} else {
		var err error
		if accessKeyID, err = prompt.TerminalPrompt("Enter Access Key ID: "); err != nil {
			return err
		}
		if secretKey, err = prompt.TerminalSecretPrompt("Enter Secret Access Key: "); err != nil {
			return err
		}
	}

	ckr := &session.CredentialKeyring{Keyring: a.Keyring()}
	creds := session.Credentials{AccessKeyID: accessKeyID, SecretAccessKey: secretKey}
	if err := ckr.Set(input.ProfileName, creds); err != nil {
		return err
	}

	fmt.Printf("Added credentials to profile %q in keyring\n", input.ProfileName)

	store, err := a.DefaultSessionStore()
	if err != nil {
		return err
	}
	if n, _ := session.RemoveForProfile(store, input.ProfileName); n > 0 {
		fmt.Printf("Deleted %d existing sessions.\n", n)
	}

	return nil
}
