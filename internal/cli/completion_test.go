package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/meshsurgery/pkg/pipeline"
)

func TestCompletionCommand(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "__start_meshsurgery"},
		{"zsh", "#compdef meshsurgery"},
		{"fish", "complete -c meshsurgery"},
		{"powershell", "Register-ArgumentCompleter"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			isolate(t)
			out, err := runCLI(t, "completion", tt.shell)
			if err != nil {
				t.Fatalf("completion %s: %v", tt.shell, err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("%s script missing %q", tt.shell, tt.want)
			}
		})
	}
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "completion", "tcsh"); err == nil {
		t.Error("expected an error for an unsupported shell")
	}
}

func TestShapeCompletion(t *testing.T) {
	for _, sub := range []string{"generate", "collapse", "inspect"} {
		t.Run(sub, func(t *testing.T) {
			isolate(t)
			out, err := runCLI(t, "__complete", sub, "")
			if err != nil {
				t.Fatalf("__complete %s: %v", sub, err)
			}
			for _, shape := range pipeline.Shapes {
				if !strings.Contains(out, shape+"\n") {
					t.Errorf("%s does not complete shape %q:\n%s", sub, shape, out)
				}
			}
		})
	}
}
