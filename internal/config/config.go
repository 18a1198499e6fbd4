// Package config provides settings for the companion server.
//
// Settings come from an optional YAML file with environment overrides,
// so a bare container deployment works with env vars alone.
//
// Config file locations (priority order):
//  1. $FRIGATE_SIMPLEUI_CONFIG
//  2. ./frigate-simpleui.yaml
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all server settings.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Frigate  FrigateConfig  `yaml:"frigate"`
	Go2RTC   Go2RTCConfig   `yaml:"go2rtc"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	WebRTC   WebRTCConfig   `yaml:"webrtc"`
	Detector DetectorConfig `yaml:"detector"`
}

// ServerConfig covers the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// FrigateConfig points at the remote NVR.
type FrigateConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Go2RTCConfig points at the media-routing sidecar.
type Go2RTCConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// MQTTConfig is passthrough broker connection data for the rendered
// document skeleton.
type MQTTConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// WebRTCConfig is passthrough real-time transport data for the rendered
// document skeleton.
type WebRTCConfig struct {
	Candidates []string `yaml:"candidates"`
	Listen     string   `yaml:"listen"`
}

// DetectorConfig sets the accelerator bus used until the remote
// document says otherwise.
type DetectorConfig struct {
	DefaultDevice string `yaml:"default_device"`
}

// Load finds and loads the config file, or returns defaults if none is
// found. Environment variables override file values either way.
func Load() (*Config, string, error) {
	path := findConfigPath()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, path, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, path, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, path, nil
}

func findConfigPath() string {
	if p := os.Getenv("FRIGATE_SIMPLEUI_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("./frigate-simpleui.yaml"); err == nil {
		return "./frigate-simpleui.yaml"
	}
	return ""
}

// applyEnv overlays environment variables on top of file values.
func (c *Config) applyEnv() {
	setString(&c.Frigate.URL, "FRIGATE_URL")
	setString(&c.Go2RTC.URL, "GO2RTC_URL")
	setString(&c.MQTT.Host, "MQTT_HOST")
	setInt(&c.MQTT.Port, "MQTT_PORT")
	setString(&c.MQTT.User, "MQTT_USER")
	setString(&c.MQTT.Password, "MQTT_PASSWORD")
	setString(&c.WebRTC.Listen, "WEBRTC_LISTEN")
	setString(&c.Detector.DefaultDevice, "DETECTOR_DEVICE")

	if v := os.Getenv("WEBRTC_CANDIDATES"); v != "" {
		c.WebRTC.Candidates = strings.Split(v, ",")
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
}

// applyDefaults fills anything still unset with stock deployment values.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3001"
	}
	if c.Frigate.URL == "" {
		c.Frigate.URL = "http://192.168.199.3:5000"
	}
	if c.Frigate.Timeout == 0 {
		c.Frigate.Timeout = 10 * time.Second
	}
	if c.Go2RTC.URL == "" {
		c.Go2RTC.URL = "http://192.168.199.3:1984"
	}
	if c.Go2RTC.Timeout == 0 {
		c.Go2RTC.Timeout = 5 * time.Second
	}
	if c.MQTT.Host == "" {
		c.MQTT.Host = "192.168.199.2"
	}
	if c.MQTT.Port == 0 {
		c.MQTT.Port = 1883
	}
	if c.MQTT.User == "" {
		c.MQTT.User = "mqtt-user"
	}
	if c.MQTT.Password == "" {
		c.MQTT.Password = "mqttpassword"
	}
	if len(c.WebRTC.Candidates) == 0 {
		c.WebRTC.Candidates = []string{"localhost:8555", "192.168.199.3:8555", "127.0.0.1:8555", "stun:8555"}
	}
	if c.WebRTC.Listen == "" {
		c.WebRTC.Listen = ":8555/tcp"
	}
	if c.Detector.DefaultDevice == "" {
		c.Detector.DefaultDevice = "pci"
	}
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
