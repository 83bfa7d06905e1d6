package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("site", "", "")
	flags.String("action", "", "")
	flags.String("mod", "", "")
	flags.Float64("days", 0, "")
	flags.Bool("unicode", false, "")
	flags.String("praw-ini", "", "")
	flags.String("config", "", "")
	require.NoError(t, flags.Parse(args))

	return flags
}

// isolate keeps the developer's own config and environment out of a test.
func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(SiteEnvVar, "")
	t.Setenv("praw_site", "")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	return dir
}

func TestInitConfig_Defaults(t *testing.T) {
	isolate(t)

	conf, err := InitConfig(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "", conf.Site)
	assert.Equal(t, 0.0, conf.Days)
	assert.False(t, conf.Unicode)
	assert.Equal(t, 100, conf.PageSize)
	assert.Equal(t, 60.0, conf.RequestsPerMinute)
	assert.Equal(t, 30*time.Second, conf.Timeout)
	assert.Equal(t, "info", conf.LogLevel)
}

func TestInitConfig_SiteFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv(SiteEnvVar, "modbot")

	conf, err := InitConfig(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "modbot", conf.Site)

	conf, err = InitConfig(newFlags(t, "--site", "explicit"))
	require.NoError(t, err)
	assert.Equal(t, "explicit", conf.Site)
}

func TestInitConfig_Flags(t *testing.T) {
	isolate(t)

	conf, err := InitConfig(newFlags(t,
		"--action", "removelink",
		"--mod", "AutoModerator",
		"--days", "7.5",
		"--unicode",
		"--praw-ini", "/tmp/praw.ini"))
	require.NoError(t, err)

	assert.Equal(t, "removelink", conf.Action)
	assert.Equal(t, "AutoModerator", conf.Mod)
	assert.Equal(t, 7.5, conf.Days)
	assert.True(t, conf.Unicode)
	assert.Equal(t, "/tmp/praw.ini", conf.PrawIni)
}

func TestInitConfig_ConfigFile(t *testing.T) {
	dir := isolate(t)

	content := `
site: fromfile
unicode: true
page_size: 25
requests_per_minute: 30
timeout: 5s
log_level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reddit-logs.yaml"), []byte(content), 0o600))

	conf, err := InitConfig(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "fromfile", conf.Site)
	assert.True(t, conf.Unicode)
	assert.Equal(t, 25, conf.PageSize)
	assert.Equal(t, 30.0, conf.RequestsPerMinute)
	assert.Equal(t, 5*time.Second, conf.Timeout)
	assert.Equal(t, "debug", conf.LogLevel)

	// Flags win over the file.
	conf, err = InitConfig(newFlags(t, "--site", "flag"))
	require.NoError(t, err)
	assert.Equal(t, "flag", conf.Site)
}

func TestInitConfig_ExplicitConfigMissing(t *testing.T) {
	dir := isolate(t)

	_, err := InitConfig(newFlags(t, "--config", filepath.Join(dir, "missing.yaml")))
	assert.Error(t, err)
}

func TestInitConfig_Invalid(t *testing.T) {
	isolate(t)

	_, err := InitConfig(newFlags(t, "--days", "-1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--days")
}

func TestValidate(t *testing.T) {
	valid := Config{PageSize: 100, RequestsPerMinute: 60, Timeout: time.Second}
	ok, msg := valid.Validate()
	assert.True(t, ok)
	assert.Empty(t, msg)

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"negative days", func(c *Config) { c.Days = -2 }},
		{"page size zero", func(c *Config) { c.PageSize = 0 }},
		{"page size too big", func(c *Config) { c.PageSize = 101 }},
		{"no rate", func(c *Config) { c.RequestsPerMinute = 0 }},
		{"no timeout", func(c *Config) { c.Timeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			ok, msg := c.Validate()
			assert.False(t, ok)
			assert.NotEmpty(t, msg)
		})
	}
}
