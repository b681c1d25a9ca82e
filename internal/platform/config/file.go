package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// CLIConfig holds taxcalc settings read from a TOML file.
type CLIConfig struct {
	General GeneralConfig `toml:"general"`
	Rent    RentConfig    `toml:"rent"`
}

type GeneralConfig struct {
	DBPath  string `toml:"db_path"`
	Year    int    `toml:"year"`
	DataDir string `toml:"data_dir"`
}

type RentConfig struct {
	BaseURL string   `toml:"base_url,omitempty"`
	Timeout duration `toml:"timeout,omitempty"`
}

// duration decodes TOML strings such as "15s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		General: GeneralConfig{
			DBPath:  "data.db",
			Year:    2023,
			DataDir: "taxdata",
		},
		Rent: RentConfig{
			BaseURL: "https://www.rent.com",
			Timeout: duration{10 * time.Second},
		},
	}
}

// CLIConfigPath returns the XDG-compliant path of the taxcalc config file.
func CLIConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taxcalc", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "taxcalc", "config.toml")
}

// LoadCLIConfig overlays the file at path on the defaults. A missing file yields the defaults.
func LoadCLIConfig(path string) (CLIConfig, error) {
	cfg := DefaultCLIConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func (r RentConfig) TimeoutDuration() time.Duration {
	return r.Timeout.Duration
}
