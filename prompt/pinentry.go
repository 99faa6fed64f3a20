package prompt

import (
	"fmt"
	"strings"

	"github.com/gopasspw/pinentry"
)

// PinentryMfaPrompt uses GnuPG's pinentry program to prompt for an
// OATH-TOTP token
func PinentryMfaPrompt(mfaSerial string) (string, error) {
	pi, err := pinentry.New()
	if err != nil {
		return "", fmt.Errorf("pinentry: %w", err)
	}
	defer pi.Close()

	for k, v := range map[string]string{
		"title":  "aws-session",
		"desc":   strings.TrimSuffix(mfaPromptMessage(mfaSerial), ": "),
		"prompt": "MFA code:",
		"ok":     "OK",
	} {
		if err := pi.Set(k, v); err != nil {
			return "", fmt.Errorf("pinentry: %w", err)
		}
	}

	pin, err := pi.GetPin()
	if err != nil {
		return "", fmt.Errorf("pinentry: %w", err)
	}
	return strings.TrimSpace(string(pin)), nil
}

func init() {
	Methods["pinentry"] = PinentryMfaPrompt
}
