package configmgr

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/marcodd23/go-txchain/pkg/validator"
)

const defaultConfigBaseName = "property"

func LoadConfigForEnv(config Config) error {
	return ReadConfiguration(getEnvPropertyFileName(defaultConfigBaseName), config)
}

// LoadConfigFromPathForEnv - search the property-<ENV> properties in the given search path (for ex. "./config" )
func LoadConfigFromPathForEnv(searchPath string, config Config) error {
	if searchPath == "" {
		return LoadConfigForEnv(config)
	}

	searchPath = strings.TrimSuffix(searchPath, "/")
	return ReadConfiguration(getEnvPropertyFileName(fmt.Sprintf("%s/%s", searchPath, defaultConfigBaseName)), config)
}

// ReadConfiguration reads the configuration from the file and environment variables, then validates it.
func ReadConfiguration(configFilePath string, config Config) error {
	log.Println("config filepath: ", configFilePath)

	v := viper.New()
	v.SetConfigFile(configFilePath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	// Replace dots in keys with underscores in environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := v.ReadInConfig(); err == nil {
		log.Printf("Reading configuration from config file: %s\nSet environment variables will OVERRIDE these values, as the environment takes precedent.", configFilePath)
	} else {
		log.Println("No configuration file found, reading configuration from environment variables.")
	}

	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("unable to decode into config struct, %v", err)
	}

	if valErrs := validator.NewValidator().ValidateStruct(config); len(valErrs) > 0 {
		return validator.NewValidationError(valErrs)
	}

	return nil
}

func getEnvPropertyFileName(baseFileName string) string {
	env := strings.ToUpper(os.Getenv("ENVIRONMENT"))
	if !checkIfLocalEnv(env) {
		return fmt.Sprintf("%s-%s.yaml", baseFileName, strings.ToLower(env))
	}

	return fmt.Sprintf("%s.yaml", baseFileName)
}

func checkIfLocalEnv(env string) bool {
	switch strings.ToUpper(env) {
	case "DEV", "STAGE", "PROD":
		return false
	}

	return true
}
