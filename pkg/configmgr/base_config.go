package configmgr

import "github.com/marcodd23/go-txchain/pkg/dbx"

// Config - config interface.
type Config interface {
	GetServiceName() string
	GetVersion() string
	GetEnvironment() string
	GetLoggingConfig() *LoggingConfig
	GetDatabaseConfig() *DatabaseConfig
	IsLocalEnvironment() bool
}

// BaseConfig - app config struct.
// This struct represents the base configuration for the application and is expected to be in the following YAML format:
/*
name: "TxChainDemo"
environment: "development"
version: "1.0"
logging:
  level: "debug"
database:
  host: localhost
  port: 5432
  name: txchain
  user: postgres
  password: password
  maxConn: 2
  vpcDirectConnection: false
*/
type BaseConfig struct {
	Name        string          `mapstructure:"name" validate:"required"`
	Environment string          `mapstructure:"environment"`
	Version     string          `mapstructure:"version"`
	Logging     *LoggingConfig  `mapstructure:"logging"`
	Database    *DatabaseConfig `mapstructure:"database"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// DatabaseConfig - connection properties of the Postgres instance.
type DatabaseConfig struct {
	Host                string `mapstructure:"host"`
	Port                int32  `mapstructure:"port"`
	Name                string `mapstructure:"name"`
	User                string `mapstructure:"user"`
	Password            string `mapstructure:"password"`
	MaxConn             int32  `mapstructure:"maxConn"`
	VpcDirectConnection bool   `mapstructure:"vpcDirectConnection"`
}

func (cfg BaseConfig) GetServiceName() string {
	return cfg.Name
}

func (cfg BaseConfig) GetVersion() string {
	return cfg.Version
}

func (cfg BaseConfig) GetEnvironment() string {
	return cfg.Environment
}

func (cfg BaseConfig) IsLocalEnvironment() bool {
	return checkIfLocalEnv(cfg.Environment)
}

func (cfg BaseConfig) GetLoggingConfig() *LoggingConfig {
	if cfg.Logging == nil {
		return &LoggingConfig{Level: "info"}
	}

	return cfg.Logging
}

func (cfg BaseConfig) GetDatabaseConfig() *DatabaseConfig {
	return cfg.Database
}

// ToConnConfig - maps the database section to the dbx connection configuration.
func (dc *DatabaseConfig) ToConnConfig(isLocalEnv bool) dbx.ConnConfig {
	maxConn := dc.MaxConn
	if maxConn == 0 {
		maxConn = 1
	}

	return dbx.ConnConfig{
		VpcDirectConnection: dc.VpcDirectConnection,
		Host:                dc.Host,
		Port:                dc.Port,
		DBName:              dc.Name,
		User:                dc.User,
		Password:            dc.Password,
		MaxConn:             maxConn,
		IsLocalEnv:          isLocalEnv,
	}
}
