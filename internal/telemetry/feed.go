package telemetry

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/mutker/radiolinkd/internal/errors"
	"codeberg.org/mutker/radiolinkd/internal/logger"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	jsoniter "github.com/json-iterator/go"
)

const (
	connectTimeout       = 10 * time.Second
	keepAlive            = 60 * time.Second
	pingTimeout          = 10 * time.Second
	maxReconnectInterval = 1 * time.Minute
)

type mqttFeed struct {
	client mqtt.Client
	topic  string
	json   jsoniter.API
}

// NewFeed connects to the MQTT broker and returns a publisher for the
// structured telemetry feed. Samples go out at QoS 0: the contract is
// fire-and-forget, with no retry if the broker drops a message.
func NewFeed(cfg FeedConfig) (Publisher, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		logger.Debug().Msg("Telemetry feed disabled, using no-op publisher")
		return &noopPublisher{}, nil
	}

	brokerURL := fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(fmt.Sprintf("radiolinkd-%d", time.Now().Unix()))
	opts.SetKeepAlive(keepAlive)
	opts.SetPingTimeout(pingTimeout)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(maxReconnectInterval)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info().Str("broker", brokerURL).Msg("Telemetry feed connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn().Err(err).Msg("Telemetry feed connection lost")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, errFactory.Wrap(ErrFeedConnect, token.Error())
	}

	return &mqttFeed{
		client: client,
		topic:  cfg.Topic,
		json:   jsoniter.ConfigCompatibleWithStandardLibrary,
	}, nil
}

func (f *mqttFeed) Publish(ctx context.Context, rec Record) error {
	errFactory := errors.New()

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
	}

	payload, err := f.json.Marshal(rec)
	if err != nil {
		return errFactory.Wrap(ErrFeedEncode, err)
	}

	// Token deliberately not waited on: delivery is best-effort.
	f.client.Publish(f.topic, 0, false, payload)

	return nil
}

func (f *mqttFeed) Close() error {
	f.client.Disconnect(uint(connectTimeout.Milliseconds()))
	return nil
}
