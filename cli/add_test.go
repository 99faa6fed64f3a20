package cli

import (
	"os"

	"github.com/99designs/keyring"
	"github.com/alecthomas/kingpin"
)

func ExampleAddCommand() {
	configFile, sessionDir, cleanup := exampleEnv(farFuture)
	defer cleanup()

	os.Setenv("AWS_ACCESS_KEY_ID", "llamas")
	os.Setenv("AWS_SECRET_ACCESS_KEY", "rock")
	defer os.Unsetenv("AWS_ACCESS_KEY_ID")
	defer os.Unsetenv("AWS_SECRET_ACCESS_KEY")

	app := kingpin.New("aws-session", "")
	a := ConfigureGlobals(app)
	a.keyringImpl = keyring.NewArrayKeyring(nil)
	ConfigureAddCommand(app, a)
	kingpin.MustParse(app.Parse([]string{
		"--backend=file", "--config-file", configFile, "--session-save-path", sessionDir,
		"add", "--env", "llamas",
	}))

	// Output:
	// Added credentials to profile "llamas" in keyring
	// Deleted 2 existing sessions.
}
