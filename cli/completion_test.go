package cli

import (
	"bytes"
	"testing"

	"github.com/alecthomas/kingpin"
	"github.com/google/go-cmp/cmp"
)

func TestConfigureCompletionCommand(t *testing.T) {
	app := kingpin.New("test", "")
	ConfigureCompletionCommand(app)

	shells, err := completionSupportedShells()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"bash", "fish", "zsh"}, shells); diff != "" {
		t.Fatalf("supported shells mismatch (-want +got):\n%s", diff)
	}

	for _, shell := range shells {
		want, err := completionScripts.ReadFile(completionScriptName(shell))
		if err != nil {
			t.Fatal(err)
		}

		t.Run("arg/"+shell, func(t *testing.T) {
			var buf bytes.Buffer
			completionScriptPrinter = &buf

			if _, err := app.Parse([]string{"completion", shell}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if buf.String() != string(want) {
				t.Errorf("got %q; want %q", buf.String(), want)
			}
		})

		t.Run("envar/"+shell, func(t *testing.T) {
			var buf bytes.Buffer
			completionScriptPrinter = &buf
			t.Setenv("SHELL", "/bin/"+shell)

			if _, err := app.Parse([]string{"completion"}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if buf.String() != string(want) {
				t.Errorf("got %q; want %q", buf.String(), want)
			}
		})
	}

	t.Run("invalid", func(t *testing.T) {
		var buf bytes.Buffer
		app.UsageWriter(&buf)

		_, err := app.Parse([]string{"completion", "invalid"})
		if err == nil {
			t.Fatal("expected error, but didn't get one")
		}
		if err.Error() != "unknown shell: invalid" {
			t.Errorf("got error(%q)", err.Error())
		}
	})

}
