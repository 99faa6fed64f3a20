package cli

import (
	"fmt"

	"github.com/alecthomas/kingpin"

	"github.com/awssession/aws-session/session"
)

type ClearCommandInput struct {
	ProfileName string
}

func ConfigureClearCommand(app *kingpin.Application, a *AwsSession) {
	input := ClearCommandInput{}

	cmd := app.Command("clear", "Delete cached sessions, for every profile or only the one given")

	cmd.Arg("profile", "Name of the profile").
		HintAction(a.MustGetProfileNames).
		StringVar(&input.ProfileName)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := ClearCommand(input, a)
		app.FatalIfError(err, "")
		return nil
	})
}

func ClearCommand(input ClearCommandInput, a *AwsSession) error {
	store, err := a.DefaultSessionStore()
	if err != nil {
		return err
	}

	var n int
	if input.ProfileName == "" {
		n, err = session.RemoveAll(store)
	} else {
		n, err = session.RemoveForProfile(store, input.ProfileName)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Cleared %d sessions.\n", n)
	return nil
}
