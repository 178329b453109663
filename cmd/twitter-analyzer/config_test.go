package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  addr: "127.0.0.1:6000"
  top_n: 10
  job_timeout: 5m
  requests_per_second: 0.5
scraper:
  auth_token: file-token
  proxy: socks5://127.0.0.1:9050
  profile_index: 2
  requests_per_window: 30
  session_dir: "-"
client:
  server: http://analyzer.local:5000
  poll_interval: 2s
  format: markdown
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	fc, err := loadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	sc := fc.serverConfig()
	assert.Equal(t, "127.0.0.1:6000", sc.Addr)
	assert.Equal(t, 10, sc.TopN)
	assert.Equal(t, 5*time.Minute, sc.JobTimeout)
	assert.InDelta(t, 0.5, sc.RequestsPerSecond, 1e-9)

	cc := fc.clientConfig()
	assert.Equal(t, "http://analyzer.local:5000", cc.BaseURL)
	assert.Equal(t, 2*time.Second, cc.PollInterval)
	assert.Equal(t, "markdown", fc.Client.Format)

	rc := fc.scraperConfig(nil)
	assert.Equal(t, 2, rc.ProfileIndex)
	assert.Equal(t, "-", rc.SessionDir)
	assert.Equal(t, 30, rc.RateLimit.RequestsPerWindow)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")

	_, err = loadConfig(writeConfig(t, "server: [not, a, map"))
	assert.ErrorContains(t, err, "parse config")
}

func TestApplyEnv(t *testing.T) {
	fc, err := loadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	env := map[string]string{
		envAuthToken: "env-token",
		envCT0:       "env-ct0",
		envServer:    "http://other:5000",
	}
	fc.applyEnv(func(k string) string { return env[k] })

	rc := fc.scraperConfig(nil)
	assert.Equal(t, "env-token", rc.AuthToken)
	assert.Equal(t, "env-ct0", rc.CT0)
	assert.Equal(t, "socks5://127.0.0.1:9050", rc.Proxy, "unset variables keep file values")
	assert.Equal(t, "http://other:5000", fc.clientConfig().BaseURL)
}

func TestScraperConfigKeepsDefaultRateLimit(t *testing.T) {
	fc := &fileConfig{}
	assert.Zero(t, fc.scraperConfig(nil).RateLimit.RequestsPerWindow)
}

func TestScraperConfigInstallsUsageHook(t *testing.T) {
	usage := &apiUsage{}
	cfg := (&fileConfig{}).scraperConfig(usage)
	require.NotNil(t, cfg.MetricsHook)

	cfg.MetricsHook("UserTweets", true, false)
	cfg.MetricsHook("UserTweets", false, true)
	cfg.MetricsHook("UserByScreenName", false, false)

	assert.Equal(t, int64(3), usage.calls.Load())
	assert.Equal(t, int64(2), usage.failures.Load())
	assert.Equal(t, int64(1), usage.rateLimited.Load())
}
