/*
2019 © Postgres.ai
*/

// Package config provides the bot configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

// DefaultIconURL defines the icon attached to every reply.
const DefaultIconURL = "https://imgflip.com/imgflip_white_96.png"

// Config defines the bot configuration.
type Config struct {
	App      App      `yaml:"app"`
	Slash    Slash    `yaml:"slash"`
	Imgflip  Imgflip  `yaml:"imgflip"`
	Workers  Workers  `yaml:"workers"`
	Callback Callback `yaml:"callback"`
}

// App contains the HTTP server parameters.
type App struct {
	Version         string        `yaml:"-"`
	Host            string        `yaml:"host" env:"SERVER_HOST" env-default:""`
	Port            uint          `yaml:"port" env:"SERVER_PORT" env-default:"3000"`
	Debug           bool          `yaml:"debug" env:"DEBUG"`
	AuditEnabled    bool          `yaml:"auditEnabled" env:"AUDIT_ENABLED"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"SHUTDOWN_TIMEOUT" env-default:"15s"`
}

// Slash contains slash command parameters.
type Slash struct {
	Tokens  []string `yaml:"tokens" env:"SLASH_COMMAND_TOKEN" env-separator:","`
	IconURL string   `yaml:"iconURL" env:"ICON_URL" env-default:"https://imgflip.com/imgflip_white_96.png"`
}

// Imgflip contains the imgflip.com API parameters.
type Imgflip struct {
	URL      string        `yaml:"url" env:"IMGFLIP_URL" env-default:"https://api.imgflip.com"`
	Username string        `yaml:"username" env:"IMGFLIP_USERNAME"`
	Password string        `yaml:"password" env:"IMGFLIP_PASSWORD"`
	Timeout  time.Duration `yaml:"timeout" env:"IMGFLIP_TIMEOUT" env-default:"30s"`
}

// Workers limits the asynchronous reply processing.
type Workers struct {
	MaxInFlight int64 `yaml:"maxInFlight" env:"WORKERS_MAX_IN_FLIGHT" env-default:"16"`
}

// Callback contains parameters of delayed responses.
type Callback struct {
	Timeout time.Duration `yaml:"timeout" env:"CALLBACK_TIMEOUT" env-default:"10s"`
}

// Overrides contains values passed on the command line. Zero values are ignored.
type Overrides struct {
	Host            string
	Port            uint
	Debug           bool
	ImgflipUsername string
	ImgflipPassword string
	Tokens          []string
}

// Load reads the configuration file and environment variables.
// A missing file is not an error, the configuration is read from the environment only.
func Load(filename string) (*Config, error) {
	var cfg Config

	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			if err := cleanenv.ReadConfig(filename, &cfg); err != nil {
				return nil, errors.Wrap(err, "failed to read the config file")
			}

			return &cfg, nil
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to read environment variables")
	}

	return &cfg, nil
}

// Override applies command line values.
func (c *Config) Override(o Overrides) {
	if o.Host != "" {
		c.App.Host = o.Host
	}

	if o.Port != 0 {
		c.App.Port = o.Port
	}

	if o.Debug {
		c.App.Debug = true
	}

	if o.ImgflipUsername != "" {
		c.Imgflip.Username = o.ImgflipUsername
	}

	if o.ImgflipPassword != "" {
		c.Imgflip.Password = o.ImgflipPassword
	}

	if len(o.Tokens) > 0 {
		c.Slash.Tokens = o.Tokens
	}
}

// Validate checks the configuration required to serve slash commands.
func (c *Config) Validate() error {
	if len(c.Slash.Tokens) == 0 {
		return errors.New("at least one slash command token is required")
	}

	for i, token := range c.Slash.Tokens {
		if token == "" {
			return errors.Errorf("slash command token #%d is empty", i+1)
		}
	}

	if c.Imgflip.Username == "" || c.Imgflip.Password == "" {
		return errors.New("imgflip username and password are required")
	}

	if c.App.Port == 0 {
		return errors.New("port must be positive")
	}

	if c.Workers.MaxInFlight <= 0 {
		return errors.New("workers.maxInFlight must be positive")
	}

	return nil
}

// Address returns the listen address.
func (a App) Address() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}
