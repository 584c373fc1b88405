package infra

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InitConfig loads the YAML config at path, or binding.yml from the usual
// config directories when path is empty. Environment variables override file
// values with dots mapped to underscores, e.g. BINDING_TOPIC.
func InitConfig(path string) error {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("binding")
		viper.SetConfigType("yml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("../configs")
		viper.AddConfigPath("../../configs")
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("infra: failed to read config file: %w", err)
	}
	return nil
}
