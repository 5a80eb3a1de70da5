package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"playscraper/internal/decode"
	"playscraper/internal/scrapers/playstore"

	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	cfg, err := readConfig(name)
	require.NoError(t, err)
	require.Equal(t, Config{}, cfg)

	require.NoError(t, os.WriteFile(name, []byte(`{
		language: "de",
		country: "at",
		requests_per_second: 2.5,
		timeout_seconds: 10,
		throttle: {base_delay_ms: 100, jitter_min_ms: 10, jitter_max_ms: 50},
	}`), 0o644))
	cfg, err = readConfig(name)
	require.NoError(t, err)
	require.Equal(t, "de", cfg.Language)
	require.NotNil(t, cfg.Throttle)

	scraperCfg, err := cfg.scraperConfig()
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, scraperCfg.Timeout)
	require.Equal(t, 2.5, scraperCfg.RequestsPerSecond)
	require.Equal(t, playstore.HumanThrottler{
		BaseDelay: 100 * time.Millisecond,
		JitterMin: 10 * time.Millisecond,
		JitterMax: 50 * time.Millisecond,
	}, scraperCfg.Throttler)
}

func TestScraperConfigInvalidThrottle(t *testing.T) {
	cfg := Config{Throttle: &ThrottleConfig{JitterMinMs: 50, JitterMaxMs: 10}}
	_, err := cfg.scraperConfig()
	require.Error(t, err)

	scraperCfg, err := Config{}.scraperConfig()
	require.NoError(t, err)
	require.Nil(t, scraperCfg.Throttler)
	require.Nil(t, scraperCfg.Decode)
}

func TestScraperConfigDecode(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	require.NoError(t, os.WriteFile(name, []byte(`{
		decode: {list_payload_line: 4},
	}`), 0o644))

	cfg, err := readConfig(name)
	require.NoError(t, err)
	scraperCfg, err := cfg.scraperConfig()
	require.NoError(t, err)
	require.Equal(t, &decode.Options{FramingPrefixLength: 6, ListPayloadLine: 4}, scraperCfg.Decode)

	negative := -1
	cfg = Config{Decode: &DecodeConfig{FramingPrefixLength: &negative}}
	_, err = cfg.scraperConfig()
	require.ErrorContains(t, err, "framing_prefix_length -1 is negative")
}
