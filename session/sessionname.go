package session

import (
	"fmt"
	"os/user"
	"regexp"
	"time"
)

// MaxSessionNameLength is the longest RoleSessionName STS accepts
const MaxSessionNameLength = 64

var invalidSessionNameChars = regexp.MustCompile(`[^\w+=,.@-]`)

// SanitiseSessionName replaces characters STS rejects in a RoleSessionName
// and truncates the result to MaxSessionNameLength.
func SanitiseSessionName(name string) string {
	name = invalidSessionNameChars.ReplaceAllString(name, "_")
	if len(name) > MaxSessionNameLength {
		name = name[:MaxSessionNameLength]
	}
	return name
}

// NewSessionName builds a role session name identifying the operator and
// the moment of issuance
func NewSessionName(operator string, now time.Time) string {
	if operator == "" {
		operator = "aws-session"
	}
	ts := fmt.Sprintf("-%d", now.Unix())

	operator = SanitiseSessionName(operator)
	if len(operator)+len(ts) > MaxSessionNameLength {
		operator = operator[:MaxSessionNameLength-len(ts)]
	}
	return operator + ts
}

// CurrentUsername returns the login name of the user running the process
func CurrentUsername() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}
