package ui

import (
	"bytes"
	"strings"
	"testing"
)

func choiceFromInput(t *testing.T, input string) Choice {
	t.Helper()
	var out bytes.Buffer
	p := NewPrompterWithStreams(strings.NewReader(input), &out)
	return p.ChoosePageAction()
}

func TestChoosePageAction(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Choice
	}{
		{"next", "y\n", ChoiceNext},
		{"next uppercase", "Y\n", ChoiceNext},
		{"next with spaces", "  y  \n", ChoiceNext},
		{"retry", "r\n", ChoiceRetry},
		{"stop", "n\n", ChoiceStop},
		{"unrecognized input stops", "maybe\n", ChoiceStop},
		{"empty line stops", "\n", ChoiceStop},
		{"closed input stops", "", ChoiceStop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := choiceFromInput(t, tt.input); got != tt.want {
				t.Errorf("ChoosePageAction(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfirmBlocksUntilNewline(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompterWithStreams(strings.NewReader("\n"), &out)
	p.Confirm("Press Enter when ready...")

	if !strings.Contains(out.String(), "Press Enter when ready...") {
		t.Errorf("prompt text not written: %q", out.String())
	}
}
