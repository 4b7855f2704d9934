package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prptool.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestParseJSONOverridesFlags(t *testing.T) {
	path := writeTempConfig(t, `{"exponent":86243,"block":2000,"b1":1000,"b2":10000,"carry":"long"}`)

	cfg := Config{Block: 1000}
	require.NoError(t, ParseJSON(&cfg, path))

	require.EqualValues(t, 86243, cfg.Exponent)
	require.EqualValues(t, 2000, cfg.Block)
	require.EqualValues(t, 1000, cfg.B1)
	require.EqualValues(t, 10000, cfg.B2)
	require.Equal(t, "long", cfg.Carry)
}

func TestParseJSONMissingFile(t *testing.T) {
	var cfg Config
	missing := filepath.Join(t.TempDir(), "missing.json")
	require.Error(t, ParseJSON(&cfg, missing))
}

func TestValidateBlockMustDivide10000(t *testing.T) {
	cfg := Config{Block: 3000}
	require.Error(t, cfg.Validate())

	cfg = Config{Block: 2000}
	require.NoError(t, cfg.Validate())
}

func TestValidateB2MustBeAtLeastB1(t *testing.T) {
	cfg := Config{B1: 1000, B2: 500, DeviceReportsFreeMemory: true}
	require.Error(t, cfg.Validate())
}

func TestValidateMaxAllocRequiredForPM1(t *testing.T) {
	cfg := Config{B1: 1000, B2: 10000}
	require.Error(t, cfg.Validate())

	cfg.MaxAlloc = 2048
	require.NoError(t, cfg.Validate())

	cfg.MaxAlloc = 0
	cfg.DeviceReportsFreeMemory = true
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownCarryMode(t *testing.T) {
	cfg := Config{Carry: "medium"}
	require.Error(t, cfg.Validate())
}
