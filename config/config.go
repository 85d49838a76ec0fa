package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DEFAULT_COUNTER_ACTION = "com.yourname.counter.action"
const DEFAULT_CONNECT_ATTEMPTS = 1
const DEFAULT_LOG_FILE = "logs/deckcounter.log"

func LoadConfig(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", closeErr)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Error loading .env file: %v", err)
	}

	if env := os.Getenv("ENVIRONMENT"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("PLUGIN_HOST"); host != "" {
		config.Plugin.Host = host
	}
	if action := os.Getenv("PLUGIN_COUNTER_ACTION"); action != "" {
		config.Plugin.CounterAction = action
	}
	if attempts := os.Getenv("PLUGIN_CONNECT_ATTEMPTS"); attempts != "" {
		if a, err := strconv.Atoi(attempts); err == nil {
			config.Plugin.ConnectAttempts = a
		}
	}

	if enabled := os.Getenv("MQTT_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.MQTT.Enabled = e
		}
	}
	if host := os.Getenv("MQTT_HOST"); host != "" {
		config.MQTT.Host = host
	}
	if port := os.Getenv("MQTT_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.MQTT.Port = p
		}
	}
	if username := os.Getenv("MQTT_USERNAME"); username != "" {
		config.MQTT.Username = username
	}
	if password := os.Getenv("MQTT_PASSWORD"); password != "" {
		config.MQTT.Password = password
	}
	if useTLS := os.Getenv("MQTT_USE_TLS"); useTLS != "" {
		if u, err := strconv.ParseBool(useTLS); err == nil {
			config.MQTT.UseTLS = u
		}
	}
	if clientID := os.Getenv("MQTT_CLIENT_ID"); clientID != "" {
		config.MQTT.ClientID = clientID
	}
	if topicPrefix := os.Getenv("MQTT_TOPIC_PREFIX"); topicPrefix != "" {
		config.MQTT.TopicPrefix = topicPrefix
	}
	if qos := os.Getenv("MQTT_QOS"); qos != "" {
		if q, err := strconv.ParseUint(qos, 10, 8); err == nil {
			config.MQTT.QoS = byte(q)
		}
	}
	if retain := os.Getenv("MQTT_RETAIN"); retain != "" {
		if r, err := strconv.ParseBool(retain); err == nil {
			config.MQTT.Retain = r
		}
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if file := os.Getenv("LOG_FILE"); file != "" {
		config.Logging.File = file
	}
}

func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", closeErr)
		}
	}()

	_, err = file.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrDefault reads filename when it exists and otherwise falls back to the
// defaults. Plugin bundles are often read-only, so nothing is written.
func LoadOrDefault(filename string) (*Config, error) {
	var config *Config

	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		config = DefaultConfig()
		overrideWithEnv(config)
	} else {
		config, err = LoadConfig(filename)
		if err != nil {
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func GenerateDefaultConfig(filename string) error {
	config := DefaultConfig()
	return SaveConfig(config, filename)
}

func (p *PluginConfig) GetWebSocketURL(port int) string {
	return fmt.Sprintf("ws://%s", net.JoinHostPort(p.Host, strconv.Itoa(port)))
}

func (m *MQTTConfig) GetMQTTBrokerURL() string {
	scheme := "tcp"
	if m.UseTLS {
		scheme = "tls"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, m.Host, m.Port)
}

func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Plugin: PluginConfig{
			Host:            "localhost",
			CounterAction:   DEFAULT_COUNTER_ACTION,
			ConnectAttempts: DEFAULT_CONNECT_ATTEMPTS,
		},
		MQTT: MQTTConfig{
			Enabled:     false,
			Host:        "localhost",
			Port:        1883,
			Username:    "",
			Password:    "",
			UseTLS:      false,
			ClientID:    "deckcounter",
			TopicPrefix: "deckcounter",
			QoS:         0,
			Retain:      true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   DEFAULT_LOG_FILE,
		},
	}
}

func (c *Config) Validate() error {
	if err := c.Plugin.Validate(); err != nil {
		return fmt.Errorf("plugin config validation failed: %w", err)
	}

	if c.MQTT.Enabled {
		if err := c.MQTT.Validate(); err != nil {
			return fmt.Errorf("mqtt config validation failed: %w", err)
		}
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	validEnvs := []string{"development", "production", "testing"}
	found := false
	for _, env := range validEnvs {
		if c.Environment == env {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid environment '%s', must be one of: %s", c.Environment, strings.Join(validEnvs, ", "))
	}

	return nil
}

func (p *PluginConfig) Validate() error {
	host := strings.TrimSpace(p.Host)
	if host == "" {
		return fmt.Errorf("plugin host cannot be empty")
	}

	if !isLoopback(host) {
		return fmt.Errorf("plugin host must be a loopback address, got '%s'", p.Host)
	}

	if strings.TrimSpace(p.CounterAction) == "" {
		return fmt.Errorf("plugin counter action cannot be empty")
	}

	if p.ConnectAttempts < 1 {
		return fmt.Errorf("plugin connect attempts must be at least 1, got %d", p.ConnectAttempts)
	}

	return nil
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (m *MQTTConfig) Validate() error {
	if strings.TrimSpace(m.Host) == "" {
		return fmt.Errorf("mqtt host cannot be empty")
	}

	if m.Port <= 0 || m.Port > 65535 {
		return fmt.Errorf("mqtt port must be between 1 and 65535, got %d", m.Port)
	}

	if strings.TrimSpace(m.ClientID) == "" {
		return fmt.Errorf("mqtt client ID cannot be empty")
	}

	if strings.TrimSpace(m.TopicPrefix) == "" {
		return fmt.Errorf("mqtt topic prefix cannot be empty")
	}

	if m.QoS > 2 {
		return fmt.Errorf("mqtt QoS must be 0, 1, or 2, got %d", m.QoS)
	}

	if strings.HasPrefix(m.TopicPrefix, "/") || strings.HasSuffix(m.TopicPrefix, "/") {
		return fmt.Errorf("mqtt topic prefix should not start or end with '/', got '%s'", m.TopicPrefix)
	}

	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := []string{"debug", "info", "warn", "warning", "error"}
	found := false
	level := strings.ToLower(l.Level)
	for _, validLevel := range validLevels {
		if level == validLevel {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid log level '%s', must be one of: %s", l.Level, strings.Join(validLevels, ", "))
	}

	validFormats := []string{"text", "json"}
	found = false
	format := strings.ToLower(l.Format)
	for _, validFormat := range validFormats {
		if format == validFormat {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid log format '%s', must be one of: %s", l.Format, strings.Join(validFormats, ", "))
	}

	return nil
}

func (s *StartupParams) Validate() error {
	var missing []string
	if strings.TrimSpace(s.Port) == "" {
		missing = append(missing, "-port")
	}
	if strings.TrimSpace(s.PluginUUID) == "" {
		missing = append(missing, "-pluginUUID")
	}
	if strings.TrimSpace(s.RegisterEvent) == "" {
		missing = append(missing, "-registerEvent")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required arguments: %s", strings.Join(missing, ", "))
	}

	if _, err := s.PortNumber(); err != nil {
		return err
	}

	return nil
}

func (s *StartupParams) PortNumber() (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s.Port))
	if err != nil {
		return 0, fmt.Errorf("invalid port '%s': %w", s.Port, err)
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return port, nil
}
