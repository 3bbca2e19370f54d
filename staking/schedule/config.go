// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package schedule

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config carries the protocol policy tables of the multiplier schedule.
// The values are protocol constants; they are kept injectable so deployments
// can run alternative curves without code changes.
type Config struct {
	// EpochsInPeriod is the length of one lock-up period in epochs.
	EpochsInPeriod uint8 `yaml:"epochsInPeriod"`
	// Multipliers holds one power multiplier per period tier, in percent.
	// The last entry caps every remaining tier above it.
	Multipliers []uint16 `yaml:"multipliers"`
	// MinLockUpEpochs / MaxLockUpEpochs bound the lock duration of a stake.
	MinLockUpEpochs uint8 `yaml:"minLockUpEpochs"`
	MaxLockUpEpochs uint8 `yaml:"maxLockUpEpochs"`
	// AmountUnit quantizes stake amounts; every amount must be its multiple.
	AmountUnit uint64 `yaml:"amountUnit"`
	// MaxAmount bounds a single stake's amount.
	MaxAmount uint64 `yaml:"maxAmount"`
}

// DefaultConfig returns the protocol constants: 13-epoch periods, locks of
// 1 to 10 periods, and multipliers 1.0x to 3.5x with the cap above 5 periods.
func DefaultConfig() Config {
	return Config{
		EpochsInPeriod:  13,
		Multipliers:     []uint16{100, 115, 130, 150, 175, 350},
		MinLockUpEpochs: 13,
		MaxLockUpEpochs: 130,
		AmountUnit:      100,
		MaxAmount:       1_000_000_000_000_000_000,
	}
}

// Validate checks internal consistency of the config.
func (c *Config) Validate() error {
	if c.EpochsInPeriod == 0 {
		return errors.New("epochs in period must be positive")
	}
	if len(c.Multipliers) < 2 {
		return errors.New("at least two multiplier tiers required")
	}
	for i, m := range c.Multipliers {
		if m == 0 {
			return errors.New("zero multiplier tier")
		}
		if i > 0 && m <= c.Multipliers[i-1] {
			return errors.New("multiplier tiers must be strictly increasing")
		}
	}
	if c.MinLockUpEpochs == 0 || c.MinLockUpEpochs > c.MaxLockUpEpochs {
		return errors.New("invalid lock-up bounds")
	}
	if c.AmountUnit == 0 || c.AmountUnit%MultiplierScale != 0 {
		return errors.New("amount unit must be a positive multiple of the multiplier scale")
	}
	if c.MaxAmount < c.AmountUnit || c.MaxAmount%c.AmountUnit != 0 {
		return errors.New("max amount must be a positive multiple of the amount unit")
	}
	// the largest representable power must fit a signed 64-bit value
	maxMult := uint64(c.Multipliers[len(c.Multipliers)-1])
	if c.MaxAmount > uint64(1)<<62/maxMult*MultiplierScale {
		return errors.New("max amount times top multiplier overflows power range")
	}
	return nil
}

// FromFile loads a config from a YAML file.
func FromFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read schedule config")
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse schedule config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "validate schedule config")
	}
	return cfg, nil
}
