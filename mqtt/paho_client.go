package mqtt

import (
	"fmt"
	"time"

	"deckcounter/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type MQTTClient interface {
	Connect() error
	Disconnect() error
	IsConnected() bool
	Publish(topic string, payload []byte, qos byte, retain bool) error
}

type PahoClient struct {
	brokerURL string
	clientID  string
	username  string
	password  string
	client    mqtt.Client
	logger    logger.Logger
}

func NewPahoClient(brokerURL, clientID, username, password string, logger logger.Logger) *PahoClient {
	return &PahoClient{
		brokerURL: brokerURL,
		clientID:  clientID,
		username:  username,
		password:  password,
		logger:    logger,
	}
}

func (c *PahoClient) Connect() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.brokerURL)
	opts.SetClientID(c.clientID)

	if c.username != "" {
		opts.SetUsername(c.username)
	}

	if c.password != "" {
		opts.SetPassword(c.password)
	}

	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(10 * time.Second)
	opts.SetConnectionLostHandler(c.connectionLostHandler)
	opts.SetOnConnectHandler(c.onConnectHandler)
	opts.SetReconnectingHandler(c.reconnectingHandler)

	c.client = mqtt.NewClient(opts)

	c.logger.Info("Connecting to MQTT broker at %s", c.brokerURL)

	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return nil
}

func (c *PahoClient) Disconnect() error {
	if c.client != nil && c.client.IsConnected() {
		c.logger.Info("Disconnecting from MQTT broker")
		c.client.Disconnect(250)
	}
	return nil
}

func (c *PahoClient) IsConnected() bool {
	if c.client == nil {
		return false
	}
	return c.client.IsConnected()
}

func (c *PahoClient) Publish(topic string, payload []byte, qos byte, retain bool) error {
	if !c.IsConnected() {
		return fmt.Errorf("not connected to MQTT broker")
	}

	token := c.client.Publish(topic, qos, retain, payload)
	if !token.WaitTimeout(5*time.Second) {
		return fmt.Errorf("timed out publishing to %s", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("failed to publish message: %w", token.Error())
	}

	return nil
}

func (c *PahoClient) connectionLostHandler(client mqtt.Client, err error) {
	c.logger.Warn("MQTT connection lost: %v", err)
}

func (c *PahoClient) onConnectHandler(client mqtt.Client) {
	c.logger.Info("MQTT connection established")
}

func (c *PahoClient) reconnectingHandler(client mqtt.Client, opts *mqtt.ClientOptions) {
	c.logger.Info("Attempting to reconnect to MQTT broker...")
}
