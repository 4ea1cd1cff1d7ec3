// config_test.go tests config files
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileToTest is a relative path to the configuration file to test (ie. blockvent/cmd/conf.json)
var fileToTest string = "../../cmd/conf.json"

// TestConfig extracts config from a file and checks values loaded
func TestConfig(t *testing.T) {
	DotEnvFile = filepath.Join(t.TempDir(), ".env")

	conf, err := ExtractConfiguration(fileToTest)
	require.NoError(t, err)

	assert.Equal(t, "8080", conf.Port)
	assert.Equal(t, "mychannel", conf.Ledger.Channel)
	assert.Equal(t, "patrimonio", conf.Ledger.Contract)
	assert.Equal(t, "Org1MSP", conf.Ledger.MSPID)
	assert.Equal(t, "admin", conf.Ledger.Identity)
	assert.Equal(t, "amqp", conf.MbType)
}

func TestConfigDefaults(t *testing.T) {
	DotEnvFile = filepath.Join(t.TempDir(), ".env")

	conf, err := ExtractConfiguration("")
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)
}

func TestConfigMissingFile(t *testing.T) {
	_, err := ExtractConfiguration(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestConfigEnvOverride(t *testing.T) {
	DotEnvFile = filepath.Join(t.TempDir(), ".env")

	t.Setenv("BLOCKVENT_PORT", "9999")
	t.Setenv("BLOCKVENT_CHANNEL", "otherchannel")
	t.Setenv("BLOCKVENT_STORETYPE", "mongodb")

	conf, err := ExtractConfiguration(fileToTest)
	require.NoError(t, err)

	assert.Equal(t, "9999", conf.Port)
	assert.Equal(t, "otherchannel", conf.Ledger.Channel)
	assert.Equal(t, "mongodb", conf.StoreType)
	// untouched values keep the file's
	assert.Equal(t, "patrimonio", conf.Ledger.Contract)
}

func TestConfigDotEnv(t *testing.T) {
	DotEnvFile = filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(DotEnvFile, []byte("BLOCKVENT_CONTRACT=basic\nBLOCKVENT_PORT=7000\n"), 0o600))

	// variables already in the environment win over .env
	t.Setenv("BLOCKVENT_PORT", "6000")
	// godotenv sets BLOCKVENT_CONTRACT in the process environment, register it for cleanup
	t.Setenv("BLOCKVENT_CONTRACT", "")
	require.NoError(t, os.Unsetenv("BLOCKVENT_CONTRACT"))

	conf, err := ExtractConfiguration("")
	require.NoError(t, err)

	assert.Equal(t, "basic", conf.Ledger.Contract)
	assert.Equal(t, "6000", conf.Port)
}
