package configmgr_test

import (
	"os"
	"testing"

	"github.com/marcodd23/go-txchain/pkg/configmgr"
	"github.com/marcodd23/go-txchain/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Shared configuration content
var configContent = `
name: "TxChainDemo"
environment: "development"
version: "latest"
logging:
  level: "debug"
database:
  host: localhost
  port: 5432
  name: txchain
  user: postgres
  password: password
  maxConn: 2
`

type TestConfiguration struct {
	configmgr.BaseConfig `mapstructure:",squash"`
}

func createTestConfigFile(t *testing.T, content string) string {
	file, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}
	defer file.Close()

	_, err = file.WriteString(content)
	if err != nil {
		t.Fatalf("Failed to write to temp config file: %v", err)
	}

	return file.Name()
}

func TestLoadConfigFromFile(t *testing.T) {
	configFilePath := createTestConfigFile(t, configContent)
	defer os.Remove(configFilePath)

	var cfg TestConfiguration
	err := configmgr.ReadConfiguration(configFilePath, &cfg)
	require.NoError(t, err)
	assert.Equal(t, "TxChainDemo", cfg.GetServiceName())
	assert.Equal(t, "development", cfg.GetEnvironment())
	assert.True(t, cfg.IsLocalEnvironment())
	assert.Equal(t, "debug", cfg.GetLoggingConfig().Level)

	require.NotNil(t, cfg.GetDatabaseConfig())
	connConf := cfg.GetDatabaseConfig().ToConnConfig(cfg.IsLocalEnvironment())
	assert.Equal(t, "localhost", connConf.Host)
	assert.Equal(t, int32(5432), connConf.Port)
	assert.Equal(t, "txchain", connConf.DBName)
	assert.Equal(t, int32(2), connConf.MaxConn)
	assert.True(t, connConf.IsLocalEnv)
}

func TestEnvVariableOverridesConfig(t *testing.T) {
	configFilePath := createTestConfigFile(t, configContent)
	defer os.Remove(configFilePath)

	t.Setenv("DATABASE_HOST", "db.internal")

	var cfg TestConfiguration
	err := configmgr.ReadConfiguration(configFilePath, &cfg)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.GetDatabaseConfig().Host) // Expecting overridden value
	assert.Equal(t, "txchain", cfg.GetDatabaseConfig().Name)
}

func TestInvalidConfigIsRejected(t *testing.T) {
	configFilePath := createTestConfigFile(t, `
environment: "development"
logging:
  level: "verbose"
`)
	defer os.Remove(configFilePath)

	var cfg TestConfiguration
	err := configmgr.ReadConfiguration(configFilePath, &cfg)
	require.Error(t, err)

	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Len(t, valErr.GetErrorsDetails(), 2) // missing name, unknown level
}

func TestDefaultLoggingLevel(t *testing.T) {
	assert.Equal(t, "info", configmgr.BaseConfig{}.GetLoggingConfig().Level)
}
