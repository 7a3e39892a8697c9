package config

import (
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.CharSize != 1 || cfg.IntSize != 4 || cfg.LongSize != 8 || cfg.PointerSize != 8 {
		t.Errorf("unexpected primitive sizes: %+v", cfg)
	}
	if cfg.RegisterParams != 6 {
		t.Errorf("RegisterParams = %d, want 6", cfg.RegisterParams)
	}
	if cfg.StackAlign != 16 {
		t.Errorf("StackAlign = %d, want 16", cfg.StackAlign)
	}
}

func TestLoadOverlayEmptyKeepsDefaults(t *testing.T) {
	cfg, err := LoadOverlay(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("empty overlay should equal Default(), got %+v", cfg)
	}
}

func TestLoadOverlayOverridesOnlyGivenFields(t *testing.T) {
	yaml := "label_prefix: LBL\nregister_params: 4\n"
	cfg, err := LoadOverlay(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LabelPrefix != "LBL" {
		t.Errorf("LabelPrefix = %q, want LBL", cfg.LabelPrefix)
	}
	if cfg.RegisterParams != 4 {
		t.Errorf("RegisterParams = %d, want 4", cfg.RegisterParams)
	}
	if cfg.PointerSize != 8 {
		t.Errorf("unset field PointerSize = %d, want the default 8", cfg.PointerSize)
	}
}

func TestLoadOverlayRejectsMalformedYAML(t *testing.T) {
	_, err := LoadOverlay(strings.NewReader("register_params: [not, a, number]"))
	if err == nil {
		t.Error("expected an error for malformed YAML")
	}
}
