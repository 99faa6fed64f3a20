package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alecthomas/kingpin"
	log "github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"

	"github.com/awssession/aws-session/session"
)

type LoginCommandInput struct {
	SessionFlags
	UseStdout bool
	Path      string
}

func ConfigureLoginCommand(app *kingpin.Application, a *AwsSession) {
	input := LoginCommandInput{}

	cmd := app.Command("login", "Generate a login link for the AWS Console using the role credentials")
	configureSessionFlags(cmd, a, &input.SessionFlags)

	cmd.Flag("path", "The AWS service you would like access").
		StringVar(&input.Path)

	cmd.Flag("stdout", "Print login URL to stdout instead of opening in default browser").
		Short('s').
		BoolVar(&input.UseStdout)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := LoginCommand(context.Background(), input, a)
		app.FatalIfError(err, "")
		return nil
	})
}

// LoginCommand creates a login URL for the AWS Management Console using the method described at
// https://docs.aws.amazon.com/IAM/latest/UserGuide/id_roles_providers_enable-console-custom-url.html
func LoginCommand(ctx context.Context, input LoginCommandInput, a *AwsSession) error {
	m, err := a.NewManager(input.SessionFlags)
	if err != nil {
		return err
	}
	creds, err := m.Start(ctx)
	if err != nil {
		return err
	}

	log.Infof("Requesting a signin token for session expiring in %s", time.Until(creds.Expires).Round(time.Second))

	loginURLPrefix, destination := generateLoginURL(m.Profile.Region, input.Path)
	signinToken, err := requestSigninToken(ctx, http.DefaultClient, creds, loginURLPrefix)
	if err != nil {
		return err
	}

	loginURL := fmt.Sprintf("%s?Action=login&Issuer=aws-session&Destination=%s&SigninToken=%s",
		loginURLPrefix, url.QueryEscape(destination), url.QueryEscape(signinToken))

	if input.UseStdout {
		fmt.Println(loginURL)
	} else if err = open.Run(loginURL); err != nil {
		return fmt.Errorf("failed to open %s: %w", loginURL, err)
	}

	return nil
}

func generateLoginURL(region string, path string) (string, string) {
	loginURLPrefix := "https://signin.aws.amazon.com/federation"
	destination := "https://console.aws.amazon.com/"

	if region != "" {
		destinationDomain := "console.aws.amazon.com"
		switch {
		case strings.HasPrefix(region, "cn-"):
			loginURLPrefix = "https://signin.amazonaws.cn/federation"
			destinationDomain = "console.amazonaws.cn"
		case strings.HasPrefix(region, "us-gov-"):
			loginURLPrefix = "https://signin.amazonaws-us-gov.com/federation"
			destinationDomain = "console.amazonaws-us-gov.com"
		}
		if path != "" {
			destination = fmt.Sprintf("https://%s.%s/%s?region=%s",
				region, destinationDomain, path, region)
		} else {
			destination = fmt.Sprintf("https://%s.%s/console/home?region=%s",
				region, destinationDomain, region)
		}
	}
	return loginURLPrefix, destination
}

// requestSigninToken exchanges role credentials for a console signin token
func requestSigninToken(ctx context.Context, client *http.Client, creds session.CredentialSet, loginURLPrefix string) (string, error) {
	jsonSession, err := json.Marshal(map[string]string{
		"sessionId":    creds.AccessKeyID,
		"sessionKey":   creds.SecretAccessKey,
		"sessionToken": creds.SessionToken,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loginURLPrefix, nil)
	if err != nil {
		return "", err
	}

	q := req.URL.Query()
	q.Add("Action", "getSigninToken")
	q.Add("Session", string(jsonSession))
	req.URL.RawQuery = q.Encode()

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		log.Debugf("Response body was %s", body)
		return "", fmt.Errorf("%w: call to getSigninToken failed with %v", session.ErrAuthFailure, resp.Status)
	}

	var respParsed map[string]string
	if err = json.Unmarshal(body, &respParsed); err != nil {
		return "", err
	}

	signinToken, ok := respParsed["SigninToken"]
	if !ok {
		return "", fmt.Errorf("expected a response with SigninToken")
	}

	return signinToken, nil
}
