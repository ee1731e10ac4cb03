package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/joysa21/auticareai/internal/config"
)

// MQTTSink publishes assembled reports to an MQTT broker, one message per
// screening under {topic}/{report id}.
type MQTTSink struct {
	cfg    config.MQTTConfig
	logger zerolog.Logger
	client mqtt.Client
}

func NewMQTTSink(logger zerolog.Logger, cfg config.MQTTConfig) *MQTTSink {
	return &MQTTSink{
		cfg:    cfg,
		logger: logger.With().Str("component", "mqtt-sink").Logger(),
	}
}

// Connect establishes the broker connection
func (s *MQTTSink) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", s.cfg.Broker))
	opts.SetClientID(s.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		s.logger.Info().
			Str("broker", s.cfg.Broker).
			Str("client_id", s.cfg.ClientID).
			Msg("mqtt connection established")
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		s.logger.Warn().
			Err(err).
			Str("broker", s.cfg.Broker).
			Msg("mqtt connection lost, waiting for automatic reconnection")
	}

	s.client = mqtt.NewClient(opts)

	token := s.client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connection failed: %w", err)
	}

	return nil
}

// Write publishes the report
func (s *MQTTSink) Write(ctx context.Context, rep *Report) error {
	if s.client == nil || !s.client.IsConnected() {
		return fmt.Errorf("mqtt not connected")
	}

	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	topic := fmt.Sprintf("%s/%s", s.cfg.Topic, rep.ID)

	token := s.client.Publish(topic, s.cfg.QoS, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	s.logger.Debug().Str("topic", topic).Msg("report published")
	return nil
}

// Close disconnects from the broker
func (s *MQTTSink) Close() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}
