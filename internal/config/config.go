package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port          string
		CanonicalHost string `mapstructure:"canonical_host"`
		Debug         bool
	}
	Site struct {
		BaseURL string `mapstructure:"base_url"`
		Name    string
	}
	Database struct {
		Driver string
		DSN    string
	}
	Media struct {
		Root string
		URL  string
	}
	Session struct {
		MaxAge time.Duration `mapstructure:"max_age"`
		Secure bool
	}
	SFTP struct {
		Host                  string
		Port                  int
		User                  string
		Pass                  string
		Dir                   string
		KnownHosts            string `mapstructure:"known_hosts"`
		InsecureIgnoreHostKey bool `mapstructure:"insecure_ignore_host_key"`
	}
}

var defaults = map[string]any{
	"server.port":                   "8000",
	"server.canonical_host":         "",
	"server.debug":                  false,
	"site.base_url":                 "",
	"site.name":                     "Portfolio",
	"database.driver":               "sqlite",
	"database.dsn":                  "portfolio.db",
	"media.root":                    "media",
	"media.url":                     "/media/",
	"session.max_age":               "336h",
	"session.secure":                false,
	"sftp.host":                     "",
	"sftp.port":                     22,
	"sftp.user":                     "",
	"sftp.pass":                     "",
	"sftp.dir":                      "/",
	"sftp.known_hosts":              "",
	"sftp.insecure_ignore_host_key": false,
}

// Load reads config.yaml from the given directories (./config and . when
// none are given), then applies PORTFOLIO_* environment overrides. A missing
// file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./config", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("PORTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Println("WARN: [Config] config.yaml not found. Using environment variables and defaults.")
	} else {
		log.Printf("INFO: [Config] Loaded %s", v.ConfigFileUsed())
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
		log.Printf("INFO: [Config] Server port overridden by PORT: %s", port)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("config: database.dsn is required")
	}
	if c.Session.MaxAge <= 0 {
		return errors.New("config: session.max_age must be positive")
	}
	c.Site.BaseURL = strings.TrimRight(c.Site.BaseURL, "/")
	if !strings.HasSuffix(c.Media.URL, "/") {
		c.Media.URL += "/"
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}
