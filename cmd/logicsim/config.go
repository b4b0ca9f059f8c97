// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"log/slog"
	"strings"
	"time"

	"github.com/db47h/logicsim"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	configFileName = "logicsim"
	configFileType = "yaml"
	envPrefix      = "LOGICSIM"

	cfgKeyStartPaused       = "start_paused"
	cfgKeyTruthTableTimeout = "truth_table_timeout"
	cfgKeyLogLevel          = "log_level"
	cfgKeyClockFrequency    = "clock.frequency"
	cfgKeyClockUnit         = "clock.unit"
	cfgKeyClockDutyCycle    = "clock.duty_cycle"
)

// config holds the settings of a logicsim invocation.
//
type config struct {
	StartPaused       bool
	TruthTableTimeout time.Duration
	LogLevel          slog.Level
	ClockFrequency    float64
	ClockUnit         logicsim.FrequencyUnit
	ClockDutyCycle    float64
}

var units = map[string]logicsim.FrequencyUnit{
	"hz":  logicsim.Hz,
	"khz": logicsim.KHz,
	"mhz": logicsim.MHz,
	"ghz": logicsim.GHz,
}

// loadConfig reads logicsim.yaml from configDir, if any, and applies
// LOGICSIM_* environment overrides. A missing config file is not an error.
//
func loadConfig(configDir string) (config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyStartPaused, false)
	v.SetDefault(cfgKeyTruthTableTimeout, "5s")
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetDefault(cfgKeyClockFrequency, 1.0)
	v.SetDefault(cfgKeyClockUnit, "kHz")
	v.SetDefault(cfgKeyClockDutyCycle, 0.5)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configDir != "" {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(configDir)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return config{}, errors.Wrap(err, "read config")
			}
		}
	}

	cfg := config{
		StartPaused:       v.GetBool(cfgKeyStartPaused),
		TruthTableTimeout: v.GetDuration(cfgKeyTruthTableTimeout),
		ClockFrequency:    v.GetFloat64(cfgKeyClockFrequency),
		ClockDutyCycle:    v.GetFloat64(cfgKeyClockDutyCycle),
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(cfgKeyLogLevel))); err != nil {
		return config{}, errors.Wrap(err, cfgKeyLogLevel)
	}
	unit, ok := units[strings.ToLower(v.GetString(cfgKeyClockUnit))]
	if !ok {
		return config{}, errors.Errorf("%s: unknown frequency unit %q", cfgKeyClockUnit, v.GetString(cfgKeyClockUnit))
	}
	cfg.ClockUnit = unit
	if cfg.ClockFrequency <= 0 {
		return config{}, errors.Errorf("%s: frequency must be positive", cfgKeyClockFrequency)
	}
	if cfg.ClockDutyCycle <= 0 || cfg.ClockDutyCycle >= 1 {
		return config{}, errors.Errorf("%s: duty cycle must be in ]0, 1[", cfgKeyClockDutyCycle)
	}
	if cfg.TruthTableTimeout <= 0 {
		return config{}, errors.Errorf("%s: timeout must be positive", cfgKeyTruthTableTimeout)
	}
	return cfg, nil
}
