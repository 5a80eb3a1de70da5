package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"playscraper/internal/components/configutil"
	"playscraper/internal/decode"
	"playscraper/internal/scrapers/playstore"
)

type ThrottleConfig struct {
	BaseDelayMs int `json:"base_delay_ms"`
	JitterMinMs int `json:"jitter_min_ms"`
	JitterMaxMs int `json:"jitter_max_ms"`
}

// DecodeConfig overrides the response framing, unset fields keep the defaults.
type DecodeConfig struct {
	FramingPrefixLength *int `json:"framing_prefix_length"`
	ListPayloadLine     *int `json:"list_payload_line"`
}

type Config struct {
	BaseUrl           string          `json:"base_url"`
	Language          string          `json:"language"`
	Country           string          `json:"country"`
	RequestsPerSecond float64         `json:"requests_per_second"`
	TimeoutSeconds    int             `json:"timeout_seconds"`
	UserAgents        []string        `json:"user_agents"`
	Throttle          *ThrottleConfig `json:"throttle"`
	Decode            *DecodeConfig   `json:"decode"`
}

// readConfig reads the config at path, a missing config is the zero config.
func readConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func (c Config) scraperConfig() (playstore.Config, error) {
	out := playstore.Config{
		BaseUrl:           c.BaseUrl,
		Language:          c.Language,
		Country:           c.Country,
		RequestsPerSecond: c.RequestsPerSecond,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		UserAgents:        c.UserAgents,
	}
	if c.Throttle != nil {
		throttler, err := playstore.NewHumanThrottler(
			millis(c.Throttle.BaseDelayMs),
			millis(c.Throttle.JitterMinMs),
			millis(c.Throttle.JitterMaxMs),
		)
		if err != nil {
			return playstore.Config{}, fmt.Errorf("throttle config: %w", err)
		}
		out.Throttler = throttler
	}
	if c.Decode != nil {
		opts, err := c.Decode.options()
		if err != nil {
			return playstore.Config{}, fmt.Errorf("decode config: %w", err)
		}
		out.Decode = &opts
	}
	return out, nil
}

func (d DecodeConfig) options() (decode.Options, error) {
	opts := decode.DefaultOptions
	if d.FramingPrefixLength != nil {
		if *d.FramingPrefixLength < 0 {
			return decode.Options{}, fmt.Errorf("framing_prefix_length %d is negative", *d.FramingPrefixLength)
		}
		opts.FramingPrefixLength = *d.FramingPrefixLength
	}
	if d.ListPayloadLine != nil {
		if *d.ListPayloadLine < 0 {
			return decode.Options{}, fmt.Errorf("list_payload_line %d is negative", *d.ListPayloadLine)
		}
		opts.ListPayloadLine = *d.ListPayloadLine
	}
	return opts, nil
}
