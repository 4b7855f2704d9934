// Package config holds the CLI-derived configuration for one prptool
// run: a Config struct populated first from flags then optionally
// overridden by a JSON file, following the teacher's
// parseJSONConfig/Config pattern (server/config.go, client/main.go).
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Config mirrors the CLI surface of spec §6.
type Config struct {
	Exponent      uint32 `json:"exponent"`
	FFTSize       int32  `json:"fft"`
	Block         uint32 `json:"block"`
	B1            uint32 `json:"b1"`
	B2            uint32 `json:"b2"`
	Carry         string `json:"carry"` // "long", "short", "auto"
	Device        int    `json:"device"`
	MaxAlloc      int    `json:"maxAlloc"` // MB
	Iters         uint32 `json:"iters"`
	LogStep       uint32 `json:"log"`
	Log           string `json:"logfile"`
	Dump          string `json:"dump"`
	StatLog       string `json:"statlog"`
	StatPeriod    int    `json:"statperiod"`
	CheckpointDir string `json:"checkpointDir"`
	Profile       bool   `json:"profile"`
	CudaYield     bool   `json:"cuYield"`

	// DeviceReportsFreeMemory is set by the device-discovery
	// collaborator (out of scope, §1); it governs whether -maxAlloc
	// is mandatory for a P-1 run (§7 "Configuration" fatal class).
	DeviceReportsFreeMemory bool `json:"-"`
}

// ParseJSON overrides cfg's fields with path's JSON contents, matching
// the teacher's parseJSONConfig(&config, c.String("c")).
func ParseJSON(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(cfg)
}

// Validate enforces the §7 "Configuration" fatal-at-startup checks.
func (c *Config) Validate() error {
	block := c.Block
	if block == 0 {
		block = 1000
	}
	if 10000%block != 0 {
		return errors.Errorf("config: -block %d must divide 10000", block)
	}
	if c.B1 > 0 {
		if c.B2 < c.B1 {
			return errors.Errorf("config: -B2 (%d) must be >= -B1 (%d)", c.B2, c.B1)
		}
		if c.MaxAlloc == 0 && !c.DeviceReportsFreeMemory {
			return errors.New("config: -maxAlloc is required for P-1 when the device does not report free memory")
		}
	}
	switch c.Carry {
	case "", "auto", "long", "short":
	default:
		return errors.Errorf("config: -carry %q must be one of auto, long, short", c.Carry)
	}
	return nil
}
