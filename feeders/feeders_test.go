package feeders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileConfig struct {
	Name   string `yaml:"name" toml:"name" json:"name"`
	Server struct {
		Host string `yaml:"host" toml:"host" json:"host"`
		Port int    `yaml:"port" toml:"port" json:"port"`
	} `yaml:"server" toml:"server" json:"server"`
}

type serverOnly struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestYaml_FeedAndSection(t *testing.T) {
	path := writeFile(t, "app.yaml", "name: platformd\nserver:\n  host: 0.0.0.0\n  port: 8443\n")

	var cfg fileConfig
	require.NoError(t, NewYaml(path).Feed(&cfg))
	assert.Equal(t, "platformd", cfg.Name)
	assert.Equal(t, 8443, cfg.Server.Port)

	var server serverOnly
	require.NoError(t, NewYaml(path).FeedSection("server", &server))
	assert.Equal(t, "0.0.0.0", server.Host)
	assert.Equal(t, 8443, server.Port)
}

func TestYaml_MissingSectionIsNoOp(t *testing.T) {
	path := writeFile(t, "app.yaml", "name: platformd\n")

	server := serverOnly{Host: "unchanged"}
	require.NoError(t, NewYaml(path).FeedSection("server", &server))
	assert.Equal(t, "unchanged", server.Host)
}

func TestToml_FeedAndSection(t *testing.T) {
	path := writeFile(t, "app.toml", "name = \"platformd\"\n\n[server]\nhost = \"127.0.0.1\"\nport = 9000\n")

	var cfg fileConfig
	require.NoError(t, NewToml(path).Feed(&cfg))
	assert.Equal(t, "platformd", cfg.Name)

	var server serverOnly
	require.NoError(t, NewToml(path).FeedSection("server", &server))
	assert.Equal(t, "127.0.0.1", server.Host)
	assert.Equal(t, 9000, server.Port)
}

func TestJson_Feed(t *testing.T) {
	path := writeFile(t, "app.json", `{"name":"platformd","server":{"host":"::1","port":7000}}`)

	var cfg fileConfig
	require.NoError(t, NewJson(path).Feed(&cfg))
	assert.Equal(t, "platformd", cfg.Name)
	assert.Equal(t, "::1", cfg.Server.Host)
}

func TestDotEnv_Feed(t *testing.T) {
	path := writeFile(t, ".env", "NAME=fromdotenv\n")

	var cfg struct {
		Name string `env:"NAME"`
	}
	require.NoError(t, NewDotEnv(path).Feed(&cfg))
	assert.Equal(t, "fromdotenv", cfg.Name)
}
