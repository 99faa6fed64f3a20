package prompt

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	exec "golang.org/x/sys/execabs"
)

// credentialName returns the value of envVar, or mfaSerial when it is unset
func credentialName(envVar, mfaSerial string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return mfaSerial
}

// runOTPCommand runs an external OTP generator and returns its trimmed output
func runOTPCommand(name string, args ...string) (string, error) {
	log.Infof("Fetching MFA code using `%s %s`", name, strings.Join(args, " "))
	cmd := exec.Command(name, args...)
	cmd.Stderr = os.Stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}

	return strings.TrimSpace(string(out)), nil
}

// YkmanMfaProvider runs ykman to generate a OATH-TOTP token from the Yubikey device.
// To set up ykman, first run `ykman oath accounts add`
func YkmanMfaProvider(mfaSerial string) (string, error) {
	return runOTPCommand("ykman", "oath", "accounts", "code", "--single", credentialName("YKMAN_OATH_CREDENTIAL_NAME", mfaSerial))
}

// PassMfaProvider uses the pass otp extension. The credential is named after
// the mfaSerial, or PASS_OATH_CREDENTIAL_NAME.
func PassMfaProvider(mfaSerial string) (string, error) {
	return runOTPCommand("pass", "otp", credentialName("PASS_OATH_CREDENTIAL_NAME", mfaSerial))
}

// GoPassMfaProvider uses the gopass otp extension, with the same naming as PassMfaProvider
func GoPassMfaProvider(mfaSerial string) (string, error) {
	return runOTPCommand("gopass", "otp", "-o", credentialName("PASS_OATH_CREDENTIAL_NAME", mfaSerial))
}

func init() {
	Methods["ykman"] = YkmanMfaProvider
	Methods["pass"] = PassMfaProvider
	Methods["gopass"] = GoPassMfaProvider
}
