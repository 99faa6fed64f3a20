package cli

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/alecthomas/kingpin"
)

const completionScriptDir = "completion-scripts"

//go:embed completion-scripts/aws-session.*
var completionScripts embed.FS

var completionScriptPrinter io.Writer = os.Stdout

// completionScriptName is the embedded file holding the script for shell
func completionScriptName(shell string) string {
	return path.Join(completionScriptDir, KeyringName+"."+shell)
}

// completionSupportedShells lists the shells a completion script is embedded for
func completionSupportedShells() ([]string, error) {
	entries, err := completionScripts.ReadDir(completionScriptDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read completion scripts: %w", err)
	}
	shells := make([]string, 0, len(entries))
	for _, e := range entries {
		if shell := strings.TrimPrefix(e.Name(), KeyringName+"."); shell != e.Name() {
			shells = append(shells, shell)
		}
	}
	sort.Strings(shells)
	return shells, nil
}

func ConfigureCompletionCommand(app *kingpin.Application) {
	var shell string

	shells, err := completionSupportedShells()
	if err != nil {
		panic(err)
	}

	cmd := app.Command("completion", "Print the shell completion script, for use with `eval \"$(aws-session completion SHELL)\"`")

	cmd.Arg("shell", fmt.Sprintf("Shell to print the script for, one of %v. Defaults to $SHELL", shells)).
		Required().
		Envar("SHELL").
		HintOptions(shells...).
		StringVar(&shell)

	cmd.Action(func(c *kingpin.ParseContext) error {
		script, err := completionScripts.ReadFile(completionScriptName(path.Base(shell)))
		if err != nil {
			return fmt.Errorf("unknown shell: %s", shell)
		}
		if _, err = completionScriptPrinter.Write(script); err != nil {
			return fmt.Errorf("failed to print completion script: %w", err)
		}
		return nil
	})
}
