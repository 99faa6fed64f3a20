package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin"
	log "github.com/sirupsen/logrus"
	osexec "golang.org/x/sys/execabs"

	"github.com/awssession/aws-session/iso8601"
	"github.com/awssession/aws-session/session"
)

type ExecCommandInput struct {
	SessionFlags
	Command string
	Args    []string
}

func ConfigureExecCommand(app *kingpin.Application, a *AwsSession) {
	input := ExecCommandInput{}

	cmd := app.Command("exec", "Executes a command with AWS role credentials in the environment")
	configureSessionFlags(cmd, a, &input.SessionFlags)

	cmd.Arg("cmd", "Command to execute, defaults to $SHELL").
		Default(os.Getenv("SHELL")).
		StringVar(&input.Command)

	cmd.Arg("args", "Command arguments").
		StringsVar(&input.Args)

	cmd.Action(func(c *kingpin.ParseContext) error {
		exitCode, err := ExecCommand(context.Background(), input, a)
		app.FatalIfError(err, "")
		if exitCode != 0 {
			os.Exit(exitCode)
		}
		return nil
	})
}

// ExecCommand runs the command with the role credentials of the profile in its
// environment and returns its exit code
func ExecCommand(ctx context.Context, input ExecCommandInput, a *AwsSession) (int, error) {
	if os.Getenv("AWS_SESSION_PROFILE") != "" {
		return 0, fmt.Errorf("aws-session sessions should be nested with care, unset $AWS_SESSION_PROFILE to force")
	}
	if input.Command == "" {
		return 0, fmt.Errorf("no command given and $SHELL is not set")
	}

	m, err := a.NewManager(input.SessionFlags)
	if err != nil {
		return 0, err
	}
	creds, err := m.Start(ctx)
	if err != nil {
		return 0, err
	}

	env := environ(os.Environ())
	env.Set("AWS_SESSION_PROFILE", m.Profile.Name)
	env.setCredentials(m.Profile.Region, creds)

	cmd := osexec.Command(input.Command, input.Args...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return runSubProcess(cmd)
}

func runSubProcess(cmd *osexec.Cmd) (int, error) {
	log.Debugf("Starting child process: %s %s", cmd.Path, strings.Join(cmd.Args[1:], " "))

	if err := cmd.Start(); err != nil {
		return 0, err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigChan)
		close(sigChan)
	}()
	go func() {
		for sig := range sigChan {
			_ = cmd.Process.Signal(sig)
		}
	}()

	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*osexec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return 0, err
	}
	return 0, nil
}

// environ is a slice of strings representing the environment, in the form "key=value".
type environ []string

// Unset an environment variable by key
func (e *environ) Unset(key string) {
	for i := range *e {
		if strings.HasPrefix((*e)[i], key+"=") {
			(*e)[i] = (*e)[len(*e)-1]
			*e = (*e)[:len(*e)-1]
			break
		}
	}
}

// Set adds an environment variable, replacing any existing ones of the same key
func (e *environ) Set(key, val string) {
	e.Unset(key)
	*e = append(*e, key+"="+val)
}

func (e *environ) setCredentials(region string, creds session.CredentialSet) {
	for _, key := range []string{"AWS_PROFILE", "AWS_DEFAULT_PROFILE", "AWS_CREDENTIAL_FILE", "AWS_SHARED_CREDENTIALS_FILE"} {
		e.Unset(key)
	}

	if region != "" {
		log.Debugf("Setting subprocess env: AWS_REGION=%s, AWS_DEFAULT_REGION=%s", region, region)
		e.Set("AWS_REGION", region)
		e.Set("AWS_DEFAULT_REGION", region)
	}

	log.Debug("Setting subprocess env: AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_SESSION_TOKEN")
	e.Set("AWS_ACCESS_KEY_ID", creds.AccessKeyID)
	e.Set("AWS_SECRET_ACCESS_KEY", creds.SecretAccessKey)
	e.Set("AWS_SESSION_TOKEN", creds.SessionToken)
	e.Set("AWS_SECURITY_TOKEN", creds.SessionToken)
	e.Set("AWS_CREDENTIAL_EXPIRATION", iso8601.Format(creds.Expires))
}
