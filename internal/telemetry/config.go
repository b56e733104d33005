package telemetry

import "codeberg.org/mutker/radiolinkd/internal/errors"

const (
	defaultDirPerm = 0o755
	defaultDBPath  = "/var/lib/radiolinkd/telemetry.db"
	defaultTopic   = "radiolinkd/status"
	defaultPort    = 1883
)

// FeedConfig configures the MQTT telemetry feed.
type FeedConfig struct {
	Broker  string
	Port    int
	Topic   string
	Enabled bool
}

// RecorderConfig configures the local sqlite telemetry sink.
type RecorderConfig struct {
	DBPath  string
	Enabled bool
}

func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		Port:  defaultPort,
		Topic: defaultTopic,
	}
}

func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		DBPath: defaultDBPath,
	}
}

func (c FeedConfig) Validate() error {
	errFactory := errors.New()

	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return errFactory.New(ErrInvalidBroker)
	}
	if c.Topic == "" {
		return errFactory.New(ErrInvalidConfig).WithMessage("feed topic must not be empty")
	}

	return nil
}

func (c RecorderConfig) Validate() error {
	errFactory := errors.New()

	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}

	return nil
}
