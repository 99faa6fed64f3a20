package main

import (
	"os"

	"github.com/alecthomas/kingpin"

	"github.com/awssession/aws-session/cli"
)

// Version is provided at compile time
var Version = "dev"

func main() {
	app := kingpin.New("aws-session", "Caches MFA session tokens and assumed role credentials for AWS profiles.")
	app.Version(Version)

	a := cli.ConfigureGlobals(app)
	cli.ConfigureAddCommand(app, a)
	cli.ConfigureListCommand(app, a)
	cli.ConfigureExecCommand(app, a)
	cli.ConfigureExportCommand(app, a)
	cli.ConfigureLoginCommand(app, a)
	cli.ConfigureClearCommand(app, a)
	cli.ConfigureCompletionCommand(app)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}
