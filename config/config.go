// Package config defines the roombactl configuration: which device to talk to,
// how to configure its line and how to pace commands.
package config

import (
	"time"

	"github.com/pkg/errors"

	"go.viam.com/roombactl/logging"
	"go.viam.com/roombactl/roomba"
	"go.viam.com/roombactl/serial"
	"go.viam.com/roombactl/utils"
)

// DeviceEnvVar names the serial device when no --device flag is given.
const DeviceEnvVar = "ROOMBA_DEVICE"

// Config is the resolved configuration of a roombactl run.
type Config struct {
	ConfigFilePath string `json:"-"`

	// path to /dev/ttyXXXX file
	Device string `json:"device"`

	// The baud rate the robot's Open Interface is running at
	BaudRate int `json:"baud_rate,omitempty"`

	// Pause after waking the robot and after switching to full mode
	SettleDelay time.Duration `json:"settle_delay,omitempty"`

	// Rotated log file written in addition to stdout
	LogFile string `json:"log_file,omitempty"`

	// One of debug, info, warn or error
	LogLevel string `json:"log_level,omitempty"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		BaudRate:    serial.DefaultBaudRate,
		SettleDelay: roomba.DefaultSettleDelay,
		LogLevel:    "info",
	}
}

// ApplyEnv fills Device from DeviceEnvVar when the environment sets it.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if dev, ok := lookup(DeviceEnvVar); ok && dev != "" {
		cfg.Device = dev
	}
}

// Validate ensures all parts of the config are valid. A missing device is not
// an error here; it only matters once a command is sent.
func (cfg *Config) Validate() error {
	if !utils.ValidateBaudRate(utils.ValidBaudRates, cfg.BaudRate) {
		return errors.Errorf("invalid baud_rate %d, acceptable values are %v", cfg.BaudRate, utils.ValidBaudRates)
	}
	if cfg.SettleDelay < 0 {
		return errors.Errorf("invalid settle_delay %s, must not be negative", cfg.SettleDelay)
	}
	if _, err := cfg.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the parsed log_level.
func (cfg *Config) Level() (logging.Level, error) {
	level, err := logging.LevelFromString(cfg.LogLevel)
	if err != nil {
		return level, errors.Wrap(err, "invalid log_level")
	}
	return level, nil
}

// SerialOptions returns the line settings for the configured device.
func (cfg *Config) SerialOptions() serial.Options {
	options := serial.DefaultOptions()
	options.BaudRate = cfg.BaudRate
	return options
}
