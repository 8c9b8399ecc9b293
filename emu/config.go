package emu

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"invaders/emu/log"
	"invaders/hw"
)

type Config struct {
	Video     VideoConfig     `toml:"video"`
	Audio     AudioConfig     `toml:"audio"`
	Input     InputConfig     `toml:"input"`
	Emulation EmulationConfig `toml:"emulation"`
	DIP       hw.DIPSwitches  `toml:"dip"`
}

type VideoConfig struct {
	Scale        int   `toml:"scale"`
	Overlay      bool  `toml:"overlay"`
	DisableVSync bool  `toml:"disable_vsync"`
	Monitor      int32 `toml:"monitor"`
}

type AudioConfig struct {
	DisableAudio bool   `toml:"disable_audio"`
	SamplesDir   string `toml:"samples_dir"`
	RecordPath   string `toml:"record_path"` // if set, record audio output to this wav file
}

type EmulationConfig struct {
	ProtectROM    bool `toml:"protect_rom"`
	StrictOpcodes bool `toml:"strict_opcodes"`
}

// DefaultConfig is the configuration used when no configuration file exists.
func DefaultConfig() Config {
	return Config{
		Video: VideoConfig{
			Scale:   3,
			Overlay: true,
		},
		Audio: AudioConfig{
			SamplesDir: "samples",
		},
		Input: DefaultInputConfig(),
		DIP: hw.DIPSwitches{
			Ships:       3,
			ExtraShipAt: 1500,
			CoinInfo:    true,
		},
	}
}

// Check fixes out of range values.
func (cfg *Config) Check() {
	if cfg.Video.Scale < 1 {
		log.ModEmu.Warnf("Invalid video scale %d, fallback to 1", cfg.Video.Scale)
		cfg.Video.Scale = 1
	}
	if cfg.DIP.Ships < 3 || cfg.DIP.Ships > 6 {
		log.ModEmu.Warnf("Invalid number of ships %d, fallback to 3", cfg.DIP.Ships)
		cfg.DIP.Ships = 3
	}
	if cfg.DIP.ExtraShipAt != 1000 && cfg.DIP.ExtraShipAt != 1500 {
		log.ModEmu.Warnf("Invalid extra ship score %d, fallback to 1500", cfg.DIP.ExtraShipAt)
		cfg.DIP.ExtraShipAt = 1500
	}
}

var ConfigDir = sync.OnceValue(func() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		log.ModEmu.Warnf("No user config directory: %v", err)
		return "."
	}
	return filepath.Join(dir, "invaders")
})

const cfgFilename = "config.toml"

// ConfigPath returns the path of the default configuration file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), cfgFilename)
}

// LoadConfig loads the configuration at path. Values not present in the
// file keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return DefaultConfig(), err
	}
	cfg.Check()
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration from path, or from the
// invaders config directory if path is empty. It provides the default
// configuration if the file doesn't exist or can't be read.
func LoadConfigOrDefault(path string) Config {
	if path == "" {
		path = ConfigPath()
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.WarnZ("Failed to load config, using defaults").
				String("path", path).
				Error("err", err).
				End()
		}
		return DefaultConfig()
	}
	return cfg
}

// SaveConfig writes cfg at path, creating the parent directory if needed.
func SaveConfig(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}
