package prompt

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

type onePasswordURL struct {
	Href string `json:"href"`
}

type onePasswordItem struct {
	ID   string           `json:"id"`
	URLs []onePasswordURL `json:"urls"`
}

// OnePasswordMfaProvider runs `op` to read the OATH-TOTP token of the
// 1Password item whose URL is the mfaSerial. Items are filtered by the tag in
// AWS_SESSION_OP_TAG_NAME, default "aws-session".
func OnePasswordMfaProvider(mfaSerial string) (string, error) {
	tag := os.Getenv("AWS_SESSION_OP_TAG_NAME")
	if tag == "" {
		tag = "aws-session"
	}

	log.Debugf("Listing 1Password items tagged %s", tag)
	out, err := runOTPCommand("op", "item", "list", "--format", "json", "--tags", tag)
	if err != nil {
		return "", err
	}

	id, err := findOnePasswordItem([]byte(out), mfaSerial)
	if err != nil {
		return "", err
	}
	return runOTPCommand("op", "item", "get", "--otp", id)
}

func findOnePasswordItem(listing []byte, mfaSerial string) (string, error) {
	var items []onePasswordItem
	if err := json.Unmarshal(listing, &items); err != nil {
		return "", fmt.Errorf("op: %w", err)
	}
	for _, item := range items {
		for _, u := range item.URLs {
			if u.Href == mfaSerial {
				return item.ID, nil
			}
		}
	}
	return "", fmt.Errorf("op: no item found in 1Password for %s", mfaSerial)
}

func init() {
	Methods["1password"] = OnePasswordMfaProvider
}
