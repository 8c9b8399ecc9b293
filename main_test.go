package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"invaders/emu"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		args []string
		mode mode
	}{
		{[]string{"invaders.rom"}, runMode},
		{[]string{"run", "--scale=2", "invaders.rom"}, runMode},
		{[]string{"rom-infos", "--json", "invaders.rom"}, romInfosMode},
		{[]string{"config", "--write"}, configMode},
		{[]string{"version"}, versionMode},
	}
	for _, tt := range tests {
		cli := parseArgs(tt.args, "config.toml")
		if cli.mode != tt.mode {
			t.Errorf("parseArgs(%q) mode = %d, want %d", tt.args, cli.mode, tt.mode)
		}
	}
}

func TestApplyFlags(t *testing.T) {
	cli := parseArgs([]string{"run", "--scale=5", "--no-overlay", "--strict", "--samples=/snd", "invaders.rom"}, "config.toml")

	cfg := emu.DefaultConfig()
	applyFlags(cli.Run, &cfg)

	want := emu.DefaultConfig()
	want.Video.Scale = 5
	want.Video.Overlay = false
	want.Emulation.StrictOpcodes = true
	want.Audio.SamplesDir = "/snd"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyFlagsDefaults(t *testing.T) {
	cli := parseArgs([]string{"invaders.rom"}, "config.toml")

	cfg := emu.DefaultConfig()
	cfg.Video.Monitor = 1
	applyFlags(cli.Run, &cfg)

	want := emu.DefaultConfig()
	want.Video.Monitor = 1
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}
