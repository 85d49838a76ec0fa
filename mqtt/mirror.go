package mqtt

import (
	"fmt"
	"strconv"
	"strings"

	"deckcounter/config"
	"deckcounter/logger"
)

// Percent-encodes the MQTT level separator and wildcards. The escape byte
// itself is encoded too so distinct contexts never share a topic.
var topicEscaper = strings.NewReplacer("%", "%25", "/", "%2F", "+", "%2B", "#", "%23")

// Mirror publishes counter values and plugin connection state so other tools
// can follow the keys. It never feeds anything back into the plugin.
type Mirror struct {
	client MQTTClient
	cfg    *config.MQTTConfig
	logger logger.Logger
}

func NewMirror(client MQTTClient, cfg *config.MQTTConfig, logger logger.Logger) *Mirror {
	return &Mirror{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func CounterTopic(prefix, context string) string {
	return fmt.Sprintf("%s/counters/%s", prefix, topicEscaper.Replace(context))
}

func StateTopic(prefix string) string {
	return fmt.Sprintf("%s/state", prefix)
}

func (m *Mirror) OnCounterChanged(context string, value int) {
	if !m.client.IsConnected() {
		return
	}

	topic := CounterTopic(m.cfg.TopicPrefix, context)
	if err := m.client.Publish(topic, []byte(strconv.Itoa(value)), m.cfg.QoS, m.cfg.Retain); err != nil {
		m.logger.Error("Failed to publish counter %s: %v", context, err)
	}
}

func (m *Mirror) PublishState(state string) {
	if !m.client.IsConnected() {
		return
	}

	if err := m.client.Publish(StateTopic(m.cfg.TopicPrefix), []byte(state), m.cfg.QoS, m.cfg.Retain); err != nil {
		m.logger.Error("Failed to publish state: %v", err)
	}
}
