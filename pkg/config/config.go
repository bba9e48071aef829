package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
	Debug struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
	} `yaml:"debug"`
	User struct {
		LocalID   string `yaml:"local_id"`
		LocalName string `yaml:"local_name"`
	} `yaml:"user"`
	Simulator struct {
		AckDelayMs         int     `yaml:"ack_delay_ms"`
		GroupCreateDelayMs int     `yaml:"group_create_delay_ms"`
		TypingIntervalMs   int     `yaml:"typing_interval_ms"`
		TypingStartProb    float64 `yaml:"typing_start_prob"`
		TypingStopProb     float64 `yaml:"typing_stop_prob"`
		TypingMinMs        int     `yaml:"typing_min_ms"`
		TypingMaxMs        int     `yaml:"typing_max_ms"`
		TypingRatePerSec   float64 `yaml:"typing_rate_per_sec"`
	} `yaml:"simulator"`
	Snapshot struct {
		Enabled bool   `yaml:"enabled"`
		Cron    string `yaml:"cron"`
	} `yaml:"snapshot"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// EffectiveConfigResult carries the merged config plus where the decisive
// values came from, for the startup banner and app wiring.
type EffectiveConfigResult struct {
	Config *Config
	Addr   string
	DBPath string
	Source string // flags|env|config
}

// Addr returns host:port for the debug HTTP server.
func (c *Config) Addr() string {
	addr := c.Debug.Address
	if addr == "" {
		addr = "127.0.0.1"
	}
	p := c.Debug.Port
	if p == 0 {
		p = 8090
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseCommandFlags defines and parses command-line flags and returns their
// values along with a map indicating which flags were explicitly set.
func ParseCommandFlags() (addr string, dbPath string, cfgPath string, setFlags map[string]bool) {
	addrPtr := flag.String("addr", "127.0.0.1:8090", "debug HTTP listen address")
	dbPtr := flag.String("db", "./.chatstate", "Pebble snapshot path")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *addrPtr, *dbPtr, *cfgPtr, setFlags
}

// LoadEnvOverrides applies environment overrides onto the provided cfg and
// reports whether any env vars were used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false

	if v := os.Getenv("CHATCORE_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Debug.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Debug.Port = pi
			}
		} else {
			cfg.Debug.Address = v
		}
	}
	if v := os.Getenv("CHATCORE_DB_PATH"); v != "" {
		envUsed = true
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("CHATCORE_LOCAL_USER"); v != "" {
		envUsed = true
		cfg.User.LocalID = v
	}
	if v := os.Getenv("CHATCORE_ACK_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Simulator.AckDelayMs = n
		}
	}
	if v := os.Getenv("CHATCORE_TYPING_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Simulator.TypingIntervalMs = n
		}
	}
	if v := os.Getenv("CHATCORE_TYPING_RATE"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.Simulator.TypingRatePerSec = f
		}
	}
	if v := os.Getenv("CHATCORE_SNAPSHOT_CRON"); v != "" {
		envUsed = true
		cfg.Snapshot.Enabled = true
		cfg.Snapshot.Cron = v
	}
	if v := os.Getenv("CHATCORE_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	return envUsed
}

// LoadEffective loads config from the given path (file) and applies
// environment overrides. A missing file yields an empty config so that env
// and flags can still drive startup.
func LoadEffective(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err != nil {
		cfg = &Config{}
	}
	envUsed := LoadEnvOverrides(cfg)
	return cfg, envUsed, nil
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and the environment variable `CHATCORE_CONFIG` when the flag was
// not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("CHATCORE_CONFIG"); p != "" {
		return p
	}
	return flagPath
}
