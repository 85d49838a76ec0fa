package config

type Config struct {
	Environment string        `yaml:"environment" env:"ENVIRONMENT"`
	Plugin      PluginConfig  `yaml:"plugin"`
	MQTT        MQTTConfig    `yaml:"mqtt"`
	Logging     LoggingConfig `yaml:"logging"`
}

type PluginConfig struct {
	Host            string `yaml:"host" env:"PLUGIN_HOST"`
	CounterAction   string `yaml:"counter_action" env:"PLUGIN_COUNTER_ACTION"`
	ConnectAttempts int    `yaml:"connect_attempts" env:"PLUGIN_CONNECT_ATTEMPTS"`
}

type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled" env:"MQTT_ENABLED"`
	Host        string `yaml:"host" env:"MQTT_HOST"`
	Port        int    `yaml:"port" env:"MQTT_PORT"`
	Username    string `yaml:"username" env:"MQTT_USERNAME"`
	Password    string `yaml:"password" env:"MQTT_PASSWORD"`
	UseTLS      bool   `yaml:"use_tls" env:"MQTT_USE_TLS"`
	ClientID    string `yaml:"client_id" env:"MQTT_CLIENT_ID"`
	TopicPrefix string `yaml:"topic_prefix" env:"MQTT_TOPIC_PREFIX"`
	QoS         byte   `yaml:"qos" env:"MQTT_QOS"`
	Retain      bool   `yaml:"retain" env:"MQTT_RETAIN"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
	File   string `yaml:"file" env:"LOG_FILE"`
}

// StartupParams are the values the host passes on the plugin command line.
type StartupParams struct {
	Port          string
	PluginUUID    string
	RegisterEvent string
	Info          string
}
