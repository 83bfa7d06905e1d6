package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// SiteEnvVar names the praw.ini site used when --site is absent.
	SiteEnvVar = "REDDIT_SCRIPTS"

	envPrefix  = "REDDIT_LOGS"
	configName = "reddit-logs"
)

// ErrSite marks a praw.ini site that cannot be used: the file is unreadable,
// the section is missing, or a required setting is absent.
var ErrSite = errors.New("invalid site configuration")

type Config struct {
	Site    string
	Action  string
	Mod     string
	Days    float64
	Unicode bool

	PrawIni           string
	PageSize          int
	RequestsPerMinute float64
	Timeout           time.Duration
	LogLevel          string
}

// flagKeys maps viper keys to the command-line flags that override them.
var flagKeys = map[string]string{
	"site":     "site",
	"action":   "action",
	"mod":      "mod",
	"days":     "days",
	"unicode":  "unicode",
	"praw_ini": "praw-ini",
}

// InitConfig layers flags over environment over the optional config file over
// defaults. The config file is either the one named by the "config" flag or
// reddit-logs.yaml in the working directory or the user config directory.
func InitConfig(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("page_size", 100)
	v.SetDefault("requests_per_minute", 60)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("site", SiteEnvVar, "praw_site"); err != nil {
		return nil, errors.Wrap(err, "error binding site environment")
	}

	for key, name := range flagKeys {
		if flag := flags.Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, errors.Wrapf(err, "error binding flag --%s", name)
			}
		}
	}

	if err := readConfigFile(v, flags); err != nil {
		return nil, err
	}

	conf := &Config{
		Site:              v.GetString("site"),
		Action:            v.GetString("action"),
		Mod:               v.GetString("mod"),
		Days:              v.GetFloat64("days"),
		Unicode:           v.GetBool("unicode"),
		PrawIni:           v.GetString("praw_ini"),
		PageSize:          v.GetInt("page_size"),
		RequestsPerMinute: v.GetFloat64("requests_per_minute"),
		Timeout:           v.GetDuration("timeout"),
		LogLevel:          v.GetString("log_level"),
	}

	if valid, errStr := conf.Validate(); !valid {
		return nil, errors.New(errStr)
	}

	return conf, nil
}

func readConfigFile(v *viper.Viper, flags *pflag.FlagSet) error {
	explicit := ""
	if flag := flags.Lookup("config"); flag != nil {
		explicit = flag.Value.String()
	}

	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "error reading config file %s", explicit)
		}
		logrus.Debugf("using config file %s", v.ConfigFileUsed())
		return nil
	}

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir := userConfigDir(); dir != "" {
		v.AddConfigPath(filepath.Join(dir, configName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "error reading config file")
	}
	logrus.Debugf("using config file %s", v.ConfigFileUsed())

	return nil
}

// Validate checks the values that would otherwise fail deep inside a run.
func (c *Config) Validate() (bool, string) {
	if c.Days < 0 {
		return false, "--days must not be negative."
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return false, fmt.Sprintf("page_size must be in the range 1 - 100, got %d.", c.PageSize)
	}
	if c.RequestsPerMinute <= 0 {
		return false, "requests_per_minute must be greater than zero."
	}
	if c.Timeout <= 0 {
		return false, "timeout must be greater than zero."
	}
	return true, ""
}

// userConfigDir follows praw: $XDG_CONFIG_HOME, %APPDATA% on Windows, then
// ~/.config.
func userConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	if dir := os.Getenv("APPDATA"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}
