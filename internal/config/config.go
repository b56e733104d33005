package config

import (
	"os"

	"codeberg.org/mutker/radiolinkd/internal/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultLinkName   = "3DR"
	defaultLowRSSI    = 40
	defaultInterval   = 1
	defaultSerialPort = "/dev/ttyUSB0"
	defaultBaudRate   = 57600
	defaultMQTTPort   = 1883
	defaultMQTTTopic  = "radiolinkd/status"
	defaultDBPath     = "/var/lib/radiolinkd/telemetry.db"

	maxRawRSSI = 255
)

type Config struct {
	LinkName    string `mapstructure:"link_name"`
	LowRSSI     int    `mapstructure:"low_rssi"`
	Interval    int    `mapstructure:"interval"`
	SerialPort  string `mapstructure:"serial_port"`
	BaudRate    int    `mapstructure:"baud_rate"`
	Simulate    bool   `mapstructure:"simulate"`
	MQTTBroker  string `mapstructure:"mqtt_broker"`
	MQTTPort    int    `mapstructure:"mqtt_port"`
	MQTTTopic   string `mapstructure:"mqtt_topic"`
	MQTTEnabled bool   `mapstructure:"mqtt"`
	Telemetry   bool   `mapstructure:"telemetry"`
	TelemetryDB string `mapstructure:"database"`
	LogLevel    string `mapstructure:"log_level"`
	Debug       bool   `mapstructure:"debug"`
	Verbose     bool   `mapstructure:"verbose"`
}

// Load merges defaults, the TOML config file and command-line flags.
// Flags win over the file; the file wins over defaults. The config file
// is radiolinkd.toml in /etc or the working directory, or an explicit
// path via --config / RADIOLINKD_CONFIG.
func Load() (*Config, error) {
	errFactory := errors.New()
	v := viper.New()

	v.SetDefault("link_name", defaultLinkName)
	v.SetDefault("low_rssi", defaultLowRSSI)
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("serial_port", defaultSerialPort)
	v.SetDefault("baud_rate", defaultBaudRate)
	v.SetDefault("mqtt_port", defaultMQTTPort)
	v.SetDefault("mqtt_topic", defaultMQTTTopic)
	v.SetDefault("database", defaultDBPath)
	v.SetDefault("log_level", DefaultLogLevel)

	fs := pflag.NewFlagSet("radiolinkd", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	configPath := fs.String("config", "", "Path to config file")
	fs.String("link-name", defaultLinkName, "Human-readable name of the radio link")
	fs.Int("low-rssi", defaultLowRSSI, "Raw RSSI warning threshold")
	fs.Int("interval", defaultInterval, "Diagnostics poll interval in seconds")
	fs.String("serial-port", defaultSerialPort, "Modem serial device")
	fs.Int("baud-rate", defaultBaudRate, "Modem serial baud rate")
	fs.Bool("simulate", false, "Generate synthetic telemetry instead of reading a modem")
	fs.String("mqtt-broker", "", "MQTT broker host for the telemetry feed")
	fs.Int("mqtt-port", defaultMQTTPort, "MQTT broker port")
	fs.String("mqtt-topic", defaultMQTTTopic, "MQTT topic for the telemetry feed")
	fs.Bool("mqtt", false, "Enable the MQTT telemetry feed")
	fs.Bool("telemetry", false, "Enable the local telemetry recorder")
	fs.String("database", defaultDBPath, "Path to the telemetry database")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.Bool("debug", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	bindings := map[string]string{
		"link_name":   "link-name",
		"low_rssi":    "low-rssi",
		"interval":    "interval",
		"serial_port": "serial-port",
		"baud_rate":   "baud-rate",
		"simulate":    "simulate",
		"mqtt_broker": "mqtt-broker",
		"mqtt_port":   "mqtt-port",
		"mqtt_topic":  "mqtt-topic",
		"mqtt":        "mqtt",
		"telemetry":   "telemetry",
		"database":    "database",
		"log_level":   "log-level",
		"debug":       "debug",
		"verbose":     "verbose",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	path := *configPath
	if path == "" {
		path = os.Getenv("RADIOLINKD_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	} else {
		v.SetConfigName("radiolinkd")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err)
			}
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.ApplyLogLevel()

	return config, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.LowRSSI < 0 || c.LowRSSI > maxRawRSSI {
		return errFactory.New(errors.ErrInvalidThreshold).WithData(c.LowRSSI)
	}
	if c.Interval <= 0 {
		return errFactory.New(errors.ErrInvalidInterval).WithData(c.Interval)
	}
	if !isValidLogLevel(c.LogLevel) {
		return errFactory.New(errors.ErrInvalidLogLevel).WithData(c.LogLevel)
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warning", "error":
		return true
	default:
		return false
	}
}

// ApplyLogLevel sets the global zerolog level from the resolved
// configuration. logger.Init resets the global level, so this must run
// again after it.
func (c *Config) ApplyLogLevel() {
	switch {
	case c.Debug || c.LogLevel == "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case c.Verbose || c.LogLevel == "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case c.LogLevel == "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}
