package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultEndpoint is used when neither a flag nor the environment names a relay.
const DefaultEndpoint = "ws://localhost:8080"

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Relay      Relay  `yaml:"relay"`
	Redis      Redis  `yaml:"redis"`
	Profile    string `yaml:"profile" env:"PROFILE" env-default:"default"`
	Readiness  string `yaml:"readiness" env:"READINESS" env-default:"last-signal"`
	EagerReset bool   `yaml:"eager-reset" env:"EAGER_RESET" env-default:"false"`
}

type Relay struct {
	URL    string `yaml:"url" env:"RELAY_URL"`
	Scheme string `yaml:"scheme" env:"RELAY_SCHEME" env-default:"ws"`
	Host   string `yaml:"host" env:"RELAY_HOST"`
	Port   string `yaml:"port" env:"RELAY_PORT"`
}

type Redis struct {
	Host    string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// Load reads path, or only the environment when path does not exist.
func Load(path string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read config from environment: %w", err)
		}

		return config, nil
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

// Endpoint returns the configured relay URL, built from scheme, host and port when no
// URL is set. It is empty when the relay is not configured.
func (that *Relay) Endpoint() string {
	if that.URL != "" {
		return that.URL
	}

	if that.Host == "" {
		return ""
	}

	scheme := that.Scheme
	if scheme == "" {
		scheme = "ws"
	}

	host := that.Host
	if that.Port != "" {
		host = net.JoinHostPort(that.Host, that.Port)
	}

	return fmt.Sprintf("%s://%s", scheme, host)
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// ResolveEndpoint picks the first non-empty of the call-time endpoint, the configured
// one and DefaultEndpoint.
func ResolveEndpoint(endpoint string, conf *Config) string {
	if endpoint != "" {
		return endpoint
	}

	if conf != nil {
		if configured := conf.Relay.Endpoint(); configured != "" {
			return configured
		}
	}

	return DefaultEndpoint
}
