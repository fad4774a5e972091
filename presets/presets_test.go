package presets

import "testing"

func TestNames_StableOrder(t *testing.T) {
	want := []string{
		"Realistic Photo",
		"Anime",
		"Cinematic / Moody",
		"Oil Painting / Classic Art",
		"Cyberpunk / Neon",
	}

	got := Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %d presets", got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q (table order, not sorted)", i, got[i], want[i])
		}
	}
}

func TestGet(t *testing.T) {
	p, ok := Get("Anime")
	if !ok {
		t.Fatal("expected Anime preset")
	}
	if p.Steps != 30 || p.GuidanceScale != 8.0 || p.Width != 512 || p.Height != 512 {
		t.Errorf("unexpected bundle values: %+v", p)
	}
	if p.NegativePrompt == "" || p.Prompt == "" {
		t.Errorf("prompts should be populated: %+v", p)
	}

	if _, ok := Get("No Such Preset"); ok {
		t.Error("unknown name should report absent")
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	p, _ := Get("Cyberpunk / Neon")
	if len(p.Tags) == 0 {
		t.Fatal("expected tags")
	}
	p.Tags[0] = "mutated"

	again, _ := Get("Cyberpunk / Neon")
	if again.Tags[0] == "mutated" {
		t.Error("Get must not expose registry-owned slices")
	}
}

func TestAll_EveryPresetOnValidGrid(t *testing.T) {
	for _, p := range All() {
		if p.Width%64 != 0 || p.Height%64 != 0 {
			t.Errorf("preset %q resolution %dx%d not on the 64-pixel grid", p.Name, p.Width, p.Height)
		}
		if p.Width < 256 || p.Width > 768 || p.Height < 256 || p.Height > 768 {
			t.Errorf("preset %q resolution %dx%d outside supported range", p.Name, p.Width, p.Height)
		}
		if p.Steps < 1 {
			t.Errorf("preset %q has invalid steps %d", p.Name, p.Steps)
		}
	}
}

func TestParse_RejectsMalformedTables(t *testing.T) {
	if _, _, err := parse([]byte("{not yaml")); err == nil {
		t.Error("expected error for malformed YAML")
	}
	if _, _, err := parse([]byte("- prompt: no name\n")); err == nil {
		t.Error("expected error for unnamed preset")
	}
	if _, _, err := parse([]byte("- name: A\n- name: A\n")); err == nil {
		t.Error("expected error for duplicate names")
	}
}
