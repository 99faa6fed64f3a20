package prompt

import (
	"fmt"
	"strings"

	exec "golang.org/x/sys/execabs"
)

func dialogOutput(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func OSAScriptMfaPrompt(mfaSerial string) (string, error) {
	return dialogOutput("osascript", "-e", fmt.Sprintf(`
		display dialog "%s" default answer "" with hidden answer buttons {"OK", "Cancel"} default button 1 with title "aws-session"
		text returned of the result
		return result`,
		mfaPromptMessage(mfaSerial)))
}

func ZenityMfaPrompt(mfaSerial string) (string, error) {
	return dialogOutput("zenity", "--entry", "--hide-text", "--title=aws-session", "--text="+mfaPromptMessage(mfaSerial))
}

func KDialogMfaPrompt(mfaSerial string) (string, error) {
	return dialogOutput("kdialog", "--password", mfaPromptMessage(mfaSerial), "--title", "aws-session")
}

func init() {
	Methods["osascript"] = OSAScriptMfaPrompt
	Methods["zenity"] = ZenityMfaPrompt
	Methods["kdialog"] = KDialogMfaPrompt
}
