package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/diogo/healthchat/internal/models"
)

func TestTopics_List(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("topics"); err != nil {
		t.Fatalf("topics failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(env.stdout.String()), "\n")
	if len(lines) != len(models.HealthTopics) {
		t.Fatalf("expected %d lines, got %d", len(models.HealthTopics), len(lines))
	}
	if lines[0] != "1. COVID-19: Tell me about COVID-19 symptoms and prevention" {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestTopics_JSON(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("topics", "--json"); err != nil {
		t.Fatalf("topics failed: %v", err)
	}

	var got []models.Topic
	if err := json.Unmarshal(env.stdout.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got) != 4 || got[3].Label != "Mental Health" {
		t.Errorf("unexpected topics %+v", got)
	}
}
