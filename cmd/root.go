package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/edubridge/internal/coach"
	"github.com/spigell/edubridge/internal/logger"
)

const (
	app       = "edubridge"
	envPrefix = "EDUBRIDGE"
)

type Config struct {
	APIURL       string        `mapstructure:"api-url"`
	SessionFile  string        `mapstructure:"session-file"`
	UserAgent    string        `mapstructure:"user-agent"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Output       string        `mapstructure:"output"`
	PasswordFile string        `mapstructure:"password-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "edubridge is a cli career coach: resume analysis, role roadmaps and mock interviews",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is edubridge.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "output format: text, json or yaml")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	// Every key needs a default so that environment overrides reach Unmarshal.
	viper.SetDefault("api-url", "")
	viper.SetDefault("user-agent", "")
	viper.SetDefault("password-file", "")
	viper.SetDefault("timeout", 60*time.Second)
	viper.SetDefault("session-file", defaultSessionFile())
}

func initConfig() {
	// A missing .env is fine, the environment may be set another way.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
	case cfgFile == "" && (errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)):
		// The config file is optional: defaults and env cover everything.
	default:
		// We can't proceed if the config file parsed with error.
		log.Fatal(err)
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "."+app, "session.json")
	}
	return filepath.Join(dir, app, "session.json")
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}

	return config, nil
}

// setup builds the logger, the config and the application for a command.
// Failures are fatal: no command can work without them.
func setup() (*coach.App, *Config, *zap.Logger) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting with config",
		zap.String("api_url", config.APIURL),
		zap.String("session_file", config.SessionFile),
		zap.Duration("timeout", config.Timeout),
		zap.String("version", version),
	)

	application, err := coach.New(coach.Config{
		APIURL:      config.APIURL,
		SessionFile: config.SessionFile,
		UserAgent:   config.UserAgent,
		Timeout:     config.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal("starting the application", zap.Error(err),
			zap.String("hint", fmt.Sprintf("remove %s or run '%s logout'", config.SessionFile, app)))
	}

	return application, config, logger
}
