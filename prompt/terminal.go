package prompt

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

func TerminalPrompt(message string) (string, error) {
	fmt.Fprint(os.Stderr, message)

	reader := bufio.NewReader(os.Stdin)
	text, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(text), nil
}

// TerminalSecretPrompt reads a line from the terminal without echoing it
func TerminalSecretPrompt(message string) (string, error) {
	fmt.Fprint(os.Stderr, message)

	text, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}

	fmt.Fprintln(os.Stderr)

	return strings.TrimSpace(string(text)), nil
}

func TerminalMfaPrompt(mfaSerial string) (string, error) {
	return TerminalSecretPrompt(mfaPromptMessage(mfaSerial))
}

func init() {
	Methods["terminal"] = TerminalMfaPrompt
}
