package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	// quiesce is how long Disconnect waits for in-flight work, in ms.
	quiesce = 250
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Publisher delivers a payload to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// MQTTOptions configures the broker connection.
type MQTTOptions struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// MQTTPublisher publishes retained QoS 1 messages, so a rider's app sees
// the latest reminder state as soon as it subscribes.
type MQTTPublisher struct {
	client mqtt.Client
}

func clientOptions(o MQTTOptions) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOrderMatters(false)
	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.WithError(err).WithField("broker", o.Broker).Warn("MQTT connection lost")
	})
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.WithField("broker", o.Broker).Info("Connected to MQTT broker")
	})
	return opts
}

// NewMQTTPublisher connects to the broker.
func NewMQTTPublisher(o MQTTOptions) (*MQTTPublisher, error) {
	client := mqtt.NewClient(clientOptions(o))
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: timed out", o.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", o.Broker, err)
	}
	return &MQTTPublisher{client: client}, nil
}

// Publish sends payload and waits for the broker acknowledgement.
func (p *MQTTPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	token := p.client.Publish(topic, 1, true, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(quiesce)
}
