package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix scopes overrides of config.yml keys, e.g. APP_HTTP_SERVER_PORT.
const envPrefix = "APP"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "photo-fundraising",
	Short: "Photo Fundraising",
	Long:  `Campaign photo fundraising: donors pick race photos and the proceeds go to charity.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig reads the environment in deployments and config.yml in
// development, then fails fast on anything the command needs that is
// missing or malformed.
func loadConfig(path string, need ...internal.Section) (*internal.Config, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateFor(need...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Init(cfg.Logging.Format, cfg.Logging.Level)
	return cfg, nil
}

func readConfig(path string) (*internal.Config, error) {
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		cfg, err := internal.LoadConfigFromEnv()
		if err != nil {
			return nil, fmt.Errorf("error reading config from environment: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory holding config.yml")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(tallyCmd)
}
