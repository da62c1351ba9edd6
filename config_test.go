package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golobby/config/v3/pkg/feeder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverSettings struct {
	Host         string        `yaml:"host" default:"localhost"`
	Port         int           `yaml:"port" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" default:"15s"`
	Debug        bool          `yaml:"debug" default:"false"`
	Environments []string      `yaml:"environments" default:"dev, staging"`
}

type appSettings struct {
	Name   string         `yaml:"name" default:"platformd"`
	Server serverSettings `yaml:"server"`
}

func TestApplyDefaults(t *testing.T) {
	cfg := &appSettings{}
	require.NoError(t, ApplyDefaults(cfg))

	assert.Equal(t, "platformd", cfg.Name)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"dev", "staging"}, cfg.Server.Environments)
}

func TestApplyDefaults_KeepsExistingValues(t *testing.T) {
	cfg := &appSettings{Name: "custom"}
	cfg.Server.Port = 9000

	require.NoError(t, ApplyDefaults(cfg))
	assert.Equal(t, "custom", cfg.Name)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host, "untouched fields still get defaults")
}

func TestApplyDefaults_RejectsNonPointer(t *testing.T) {
	require.ErrorIs(t, ApplyDefaults(appSettings{}), ErrConfigNotPointer)
	require.ErrorIs(t, ApplyDefaults(nil), ErrConfigNotPointer)
}

func TestApplyDefaults_UnsupportedSliceType(t *testing.T) {
	type bad struct {
		Ports []int `default:"1,2"`
	}
	require.ErrorIs(t, ApplyDefaults(&bad{}), ErrUnsupportedDefaultType)
}

func TestLoadConfig_FeedsThenDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: fromfile\nserver:\n  port: 9090\n"), 0o600))

	cfg := &appSettings{}
	require.NoError(t, LoadConfig(cfg, feeder.Yaml{Path: path}))

	assert.Equal(t, "fromfile", cfg.Name)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host, "defaults fill what the file omits")
}

type validatedSettings struct {
	Port int `yaml:"port" default:"70000"`
}

func (s *validatedSettings) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return errors.New("port out of range")
	}
	return nil
}

func TestLoadConfig_RunsValidator(t *testing.T) {
	err := LoadConfig(&validatedSettings{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port out of range")
}

func TestStdConfigProvider(t *testing.T) {
	cfg := &appSettings{Name: "wrapped"}
	provider := NewStdConfigProvider(cfg)
	assert.Same(t, cfg, provider.GetConfig())
}
