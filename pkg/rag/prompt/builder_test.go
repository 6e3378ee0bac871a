package prompt

import (
	"strings"
	"testing"
)

func TestCompose(t *testing.T) {
	got := Compose("You are a helpful assistant.", "## Relevant Site Content:\nsome page text")

	if !strings.HasPrefix(got, "You are a helpful assistant.") {
		t.Error("persona must come first")
	}
	if !strings.Contains(got, "\n\n## Relevant Context from Website:\n") {
		t.Error("missing context section header")
	}
	if !strings.Contains(got, "some page text") {
		t.Error("context text missing from composed prompt")
	}
	if !strings.HasSuffix(got, "\n") {
		t.Error("composed prompt must end with a newline")
	}
}

func TestComposeAlwaysAppendsContextSection(t *testing.T) {
	got := Compose("persona", "")
	if !strings.Contains(got, "## Relevant Context from Website:") {
		t.Error("context section must be present even when retrieval produced nothing")
	}
}
