package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kingpin"
	log "github.com/sirupsen/logrus"

	"github.com/awssession/aws-session/session"
)

type ListCommandInput struct {
	OnlyProfiles    bool
	OnlySessions    bool
	OnlyCredentials bool
}

func ConfigureListCommand(app *kingpin.Application, a *AwsSession) {
	input := ListCommandInput{}

	cmd := app.Command("list", "List profiles, along with their stored credentials and cached sessions")
	cmd.Alias("ls")

	cmd.Flag("profiles", "Show only the profile names").
		BoolVar(&input.OnlyProfiles)

	cmd.Flag("sessions", "Show only the cached sessions").
		BoolVar(&input.OnlySessions)

	cmd.Flag("credentials", "Show only the profiles with stored credentials").
		BoolVar(&input.OnlyCredentials)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := ListCommand(input, a)
		app.FatalIfError(err, "list")
		return nil
	})
}

type sessionLabel struct {
	session.CacheKey
	Expiration time.Time
}

func (l sessionLabel) String() string {
	remaining := time.Until(l.Expiration).Truncate(time.Second)
	if remaining <= 0 {
		return fmt.Sprintf("%s:expired", l.Tier)
	}
	return fmt.Sprintf("%s:%s", l.Tier, remaining)
}

func cachedSessions(store session.ListableStore) ([]sessionLabel, error) {
	keys, err := store.Keys()
	if err != nil {
		return nil, err
	}

	var labels []sessionLabel
	for _, k := range keys {
		sess, err := store.Load(k)
		if err != nil || sess == nil {
			continue
		}
		labels = append(labels, sessionLabel{k, sess.Expiration})
	}
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].Profile != labels[j].Profile {
			return labels[i].Profile < labels[j].Profile
		}
		return labels[i].Tier < labels[j].Tier
	})
	return labels, nil
}

func ListCommand(input ListCommandInput, a *AwsSession) error {
	loader, err := a.ConfigLoader()
	if err != nil {
		return err
	}
	store, err := a.DefaultSessionStore()
	if err != nil {
		return err
	}

	if input.OnlyProfiles {
		for _, profileName := range loader.ProfileNames() {
			fmt.Println(profileName)
		}
		return nil
	}

	credentialsNames, err := loader.Keyring.Keys()
	if err != nil && input.OnlyCredentials {
		return err
	} else if err != nil {
		log.Warnf("Unable to list stored credentials: %v", err)
	}
	sort.Strings(credentialsNames)

	if input.OnlyCredentials {
		for _, c := range credentialsNames {
			fmt.Println(c)
		}
		return nil
	}

	sessions, err := cachedSessions(store)
	if err != nil {
		return err
	}

	if input.OnlySessions {
		for _, s := range sessions {
			fmt.Printf("%s %s\n", s.Profile, s)
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 25, 4, 2, ' ', 0)

	fmt.Fprintln(w, "Profile\tCredentials\tSessions\t")
	fmt.Fprintln(w, "=======\t===========\t========\t")

	shown := map[string]bool{}
	profileNames := loader.ProfileNames()
	for _, name := range credentialsNames {
		if !stringslice(profileNames).has(name) {
			profileNames = append(profileNames, name)
		}
	}
	for _, s := range sessions {
		if !stringslice(profileNames).has(s.Profile) {
			profileNames = append(profileNames, s.Profile)
		}
	}

	for _, profileName := range profileNames {
		if shown[profileName] {
			continue
		}
		shown[profileName] = true

		credentialLabel := "-"
		if stringslice(credentialsNames).has(profileName) {
			credentialLabel = profileName
		}

		var labels []string
		for _, s := range sessions {
			if s.Profile == profileName {
				labels = append(labels, s.String())
			}
		}
		sessionLabels := "-"
		if len(labels) > 0 {
			sessionLabels = strings.Join(labels, ", ")
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t\n", profileName, credentialLabel, sessionLabels)
	}

	return w.Flush()
}

type stringslice []string

func (ss stringslice) has(s string) bool {
	for _, t := range ss {
		if s == t {
			return true
		}
	}
	return false
}
