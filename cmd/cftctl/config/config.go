package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cftops/cftctl/internal/conn"
	"github.com/fatih/structs"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	CONFIGS_DIR_NAME       = ".config"
	CFTCTL_CONFIG_DIR_NAME = "cftctl"
	CONFIG_FILE_NAME       = "config"
	CONFIG_FILE_EXT        = "yml"

	ENV_PREFIX = "CFTCTL"

	OutputJSON  = "json"
	OutputTable = "table"
)

type Config struct {
	URL      string        `mapstructure:"url"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Insecure bool          `mapstructure:"insecure"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Verbose  int           `mapstructure:"verbose"`
	LogLevel string        `mapstructure:"log_level"`
	Output   string        `mapstructure:"output"`
	Color    bool          `mapstructure:"color"`
}

func GetDefault() Config {
	return Config{
		URL:      "https://localhost:1768/cft/api/v1",
		Username: "",
		Password: "",
		Insecure: false,
		Timeout:  conn.DefaultTimeout,
		Verbose:  0,
		LogLevel: "",
		Output:   OutputJSON,
		Color:    true,
	}
}

func (config Config) Map() map[string]any {
	m := map[string]any{}
	for _, field := range structs.Fields(config) {
		key := field.Tag("mapstructure")
		value := field.Value()
		m[key] = value
	}
	return m
}

// Yaml renders the config as a flat yaml document with sorted keys.
func (config Config) Yaml() []byte {
	m := config.Map()
	keys := maps.Keys(m)
	slices.Sort(keys)
	var builder strings.Builder
	for _, k := range keys {
		v := m[k]
		switch v := v.(type) {
		case string:
			builder.WriteString(fmt.Sprintf("%s: %q", k, v))
		case time.Duration:
			builder.WriteString(fmt.Sprintf("%s: %s", k, v))
		default:
			builder.WriteString(fmt.Sprintf("%s: %v", k, v))
		}
		builder.WriteRune('\n')
	}
	return []byte(builder.String())
}

// Conn returns the transport settings of the config.
func (config Config) Conn() conn.Config {
	return conn.Config{
		BaseURL:  config.URL,
		Username: config.Username,
		Password: config.Password,
		Insecure: config.Insecure,
		Timeout:  config.Timeout,
	}
}

// Load reads the effective configuration out of viper.
func Load() (Config, error) {
	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

// Dir returns the directory holding the config file.
func Dir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	return filepath.Join(home, CONFIGS_DIR_NAME, CFTCTL_CONFIG_DIR_NAME), nil
}

// Init initializes the viper config.
// `config.yml` is created in $HOME/.config/cftctl if not already existing.
// NOTE: The precedence levels of viper are the following: flags -> env -> config file -> defaults.
func Init() error {
	configPath, err := Dir()
	if err != nil {
		return err
	}
	viper.AddConfigPath(configPath)
	viper.SetConfigName(CONFIG_FILE_NAME)
	viper.SetConfigType(CONFIG_FILE_EXT)
	viper.SetEnvPrefix(ENV_PREFIX)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Create config file if not found.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := os.MkdirAll(configPath, os.ModePerm); err != nil {
				return fmt.Errorf("creating config directory: %w", err)
			}
			file := filepath.Join(configPath, fmt.Sprintf("%s.%s", CONFIG_FILE_NAME, CONFIG_FILE_EXT))
			// The file may hold credentials.
			if err := os.WriteFile(file, GetDefault().Yaml(), 0o600); err != nil {
				return fmt.Errorf("writing defaults to config file: %w", err)
			}
			viper.SetConfigFile(file)
		} else {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	for k, v := range GetDefault().Map() {
		viper.SetDefault(k, v)
	}
	return nil
}
