package ui

import "testing"

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" {
		t.Fatalf("ThemeNames()[0] = %q, want Nightfox", names[0])
	}
}

func TestNextTheme(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{"Nightfox", "Kanagawa"},
		{"Kanagawa", "Slate"},
		{"Slate", "Nightfox"},
		{"Unknown", "Nightfox"},
	}
	for _, tt := range tests {
		if got := NextTheme(tt.current); got != tt.want {
			t.Fatalf("NextTheme(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
}

func TestGetTheme_FallsBackToNightfox(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q", got)
	}
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Nightfox", got)
	}
}

func TestStatusColor(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		if got := th.StatusColor(" Cancelled "); got != th.Danger {
			t.Fatalf("%s: StatusColor(cancelled) = %q, want %q", name, got, th.Danger)
		}
		if got := th.StatusColor("active"); got != th.Success {
			t.Fatalf("%s: StatusColor(active) = %q, want %q", name, got, th.Success)
		}
		if got := th.StatusColor("mystery"); got != th.Text {
			t.Fatalf("%s: StatusColor(mystery) = %q, want %q", name, got, th.Text)
		}
	}
}

func TestPalette_CoversZapLevels(t *testing.T) {
	p := GetTheme("Nightfox").Palette()
	for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		if _, ok := p.Levels[level]; !ok {
			t.Fatalf("Palette missing level %s", level)
		}
	}
}
