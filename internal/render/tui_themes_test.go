package render

import (
	"regexp"
	"testing"
)

func TestGetTUIThemeDefault(t *testing.T) {
	if got := GetTUITheme().Name; got != "clinic" {
		t.Errorf("default theme = %q, want clinic", got)
	}
}

func TestSetTUITheme(t *testing.T) {
	defer SetTUITheme("clinic")

	if !SetTUITheme("nord") {
		t.Fatal("SetTUITheme(nord) returned false")
	}
	if GetTUITheme().Name != "nord" {
		t.Errorf("active theme = %q", GetTUITheme().Name)
	}

	if SetTUITheme("missing") {
		t.Error("unknown theme should be rejected")
	}
	if GetTUITheme().Name != "nord" {
		t.Error("unknown theme must not change the active theme")
	}
}

func TestTUIThemeNames(t *testing.T) {
	names := TUIThemeNames()
	want := []string{"clinic", "nord", "contrast"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
		if _, ok := GetTUIThemeByName(want[i]); !ok {
			t.Errorf("GetTUIThemeByName(%q) not found", want[i])
		}
	}
}

func TestThemeColors_AreValidHex(t *testing.T) {
	hex := regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

	for _, theme := range AvailableTUIThemes() {
		colors := map[string]string{
			"Background": string(theme.Background),
			"Surface":    string(theme.Surface),
			"Border":     string(theme.Border),
			"Primary":    string(theme.Primary),
			"Secondary":  string(theme.Secondary),
			"Accent":     string(theme.Accent),
			"Warning":    string(theme.Warning),
			"Error":      string(theme.Error),
			"Text":       string(theme.Text),
			"TextDim":    string(theme.TextDim),
			"TextMute":   string(theme.TextMute),
		}
		for field, c := range colors {
			if !hex.MatchString(c) {
				t.Errorf("%s.%s = %q is not a hex color", theme.Name, field, c)
			}
		}
	}
}
