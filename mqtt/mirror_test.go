package mqtt

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"deckcounter/config"
	"deckcounter/logger"
)

type published struct {
	topic   string
	payload string
	qos     byte
	retain  bool
}

type fakeClient struct {
	connected bool
	fail      error
	messages  []published
}

func (f *fakeClient) Connect() error {
	f.connected = true
	return nil
}

func (f *fakeClient) Disconnect() error {
	f.connected = false
	return nil
}

func (f *fakeClient) IsConnected() bool {
	return f.connected
}

func (f *fakeClient) Publish(topic string, payload []byte, qos byte, retain bool) error {
	if f.fail != nil {
		return f.fail
	}
	f.messages = append(f.messages, published{topic: topic, payload: string(payload), qos: qos, retain: retain})
	return nil
}

func newMirror(client MQTTClient) *Mirror {
	cfg := &config.MQTTConfig{TopicPrefix: "deck", QoS: 1, Retain: true}
	return NewMirror(client, cfg, logger.NewWithWriter(io.Discard, "debug", "text"))
}

func TestCounterTopic(t *testing.T) {
	assert.Equal(t, "deck/counters/abc123", CounterTopic("deck", "abc123"))
	assert.Equal(t, "deck/counters/a%2Fb%2Bc%23", CounterTopic("deck", "a/b+c#"))
}

func TestCounterTopic_DistinctContextsDistinctTopics(t *testing.T) {
	contexts := []string{"a/b", "a_b", "a%2Fb", "a+b", "a#b", "a%b"}

	seen := make(map[string]string)
	for _, ctx := range contexts {
		topic := CounterTopic("deck", ctx)
		if other, ok := seen[topic]; ok {
			t.Fatalf("contexts %q and %q share topic %s", other, ctx, topic)
		}
		seen[topic] = ctx
		assert.NotContains(t, topic[len("deck/counters/"):], "/")
	}
}

func TestMirror_OnCounterChanged(t *testing.T) {
	client := &fakeClient{connected: true}
	m := newMirror(client)

	m.OnCounterChanged("ctx-1", 12)

	assert.Equal(t, []published{{topic: "deck/counters/ctx-1", payload: "12", qos: 1, retain: true}}, client.messages)
}

func TestMirror_PublishState(t *testing.T) {
	client := &fakeClient{connected: true}
	m := newMirror(client)

	m.PublishState("ws_connected")

	assert.Len(t, client.messages, 1)
	assert.Equal(t, "deck/state", client.messages[0].topic)
	assert.Equal(t, "ws_connected", client.messages[0].payload)
}

func TestMirror_SkipsWhenDisconnected(t *testing.T) {
	client := &fakeClient{connected: false}
	m := newMirror(client)

	m.OnCounterChanged("ctx-1", 1)
	m.PublishState("ws_stopped")

	assert.Empty(t, client.messages)
}

func TestMirror_PublishErrorIsSwallowed(t *testing.T) {
	client := &fakeClient{connected: true, fail: errors.New("broker gone")}
	m := newMirror(client)

	assert.NotPanics(t, func() { m.OnCounterChanged("ctx-1", 1) })
}
