package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// LocalDevice in the settings file means "use this machine's LAN address".
const LocalDevice = "localdevice"

const DefaultSettingsPath = "data/server_config.json"

// Settings mirrors the settings file the menu reads and writes.
type Settings struct {
	Server ServerSettings `json:"server"`
}

type ServerSettings struct {
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

func DefaultSettings() Settings {
	return Settings{Server: ServerSettings{IP: LocalDevice, Port: 1313}}
}

// Config is everything the game needs at start up.
type Config struct {
	IP           string
	Port         int
	Framing      string
	MaxFrame     int
	LogLevel     string
	LogPretty    bool
	SpectateAddr string
}

// InitConfig loads a .env file if one exists. A missing file is fine;
// anything else is reported.
func InitConfig(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := os.Getenv(v)
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}

	return b, nil
}

// Load reads the settings file (defaults when it does not exist) and applies
// PVP_* environment overrides on top.
func Load(settingsPath string) (Config, error) {
	s, err := ReadSettings(settingsPath)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		IP:        s.Server.IP,
		Port:      s.Server.Port,
		Framing:   "length-prefixed",
		LogLevel:  "info",
		LogPretty: true,
	}

	if v, err := GetEnvVariable("PVP_IP"); err == nil {
		cfg.IP = v
	}
	if err := envInt("PVP_PORT", &cfg.Port); err != nil {
		return Config{}, err
	}
	if v, err := GetEnvVariable("PVP_FRAMING"); err == nil {
		cfg.Framing = v
	}
	if err := envInt("PVP_MAX_FRAME", &cfg.MaxFrame); err != nil {
		return Config{}, err
	}
	if v, err := GetEnvVariable("PVP_LOG_LEVEL"); err == nil {
		cfg.LogLevel = v
	}
	if v, err := GetEnvVariable("PVP_LOG_PRETTY"); err == nil {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("PVP_LOG_PRETTY: %w", err)
		}
		cfg.LogPretty = pretty
	}
	if v, err := GetEnvVariable("PVP_SPECTATE_ADDR"); err == nil {
		cfg.SpectateAddr = v
	}

	if cfg.Port < 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}
	return cfg, nil
}

func envInt(name string, dst *int) error {
	v, err := GetEnvVariable(name)
	if err != nil {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

func ReadSettings(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	s := DefaultSettings()
	if err := json.Unmarshal(b, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings file, creating its directory if needed.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	b, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ResolveIP turns the configured address into one a socket can bind to.
func (c Config) ResolveIP() (string, error) {
	if c.IP == "" || c.IP == LocalDevice {
		return MachineIP()
	}
	return c.IP, nil
}
