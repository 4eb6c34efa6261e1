// Package cmd implements the command-line interface for OpenEngine.
// It provides the root command and subcommands for running the admin API,
// crawling, searching, and provisioning storage.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openengine/openengine/cmd/crawl"
	"github.com/openengine/openengine/cmd/httpd"
	"github.com/openengine/openengine/cmd/search"
	cmdseeds "github.com/openengine/openengine/cmd/seeds"
	"github.com/openengine/openengine/cmd/setup"
	"github.com/openengine/openengine/internal/config"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug logging for all commands.
	Debug bool

	rootCmd = &cobra.Command{
		Use:   "openengine",
		Short: "A self-hosted semantic web search engine",
		Long: `OpenEngine crawls operator-curated websites, embeds page text into
dense vectors, and ranks pages by semantic similarity at query time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are visible to flag parsing
	// and viper alike.
	_ = godotenv.Load()

	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yml)",
	)
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("openengine version %s\n", config.Version)
		},
	})

	rootCmd.AddCommand(httpd.Command())
	rootCmd.AddCommand(crawl.Command())
	rootCmd.AddCommand(search.Command())
	rootCmd.AddCommand(setup.Command())
	rootCmd.AddCommand(cmdseeds.Command())
}

// initConfig reads the optional config file and binds environment variables.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	// Config file is optional; environment variables and defaults cover
	// everything it could contain.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: config file not read: %v\n", err)
		}
	}

	if err := bindEnvVars(); err != nil {
		return err
	}

	if Debug || viper.GetBool("app.debug") {
		viper.Set("logger.level", "debug")
		viper.Set("logger.development", true)
		viper.Set("logger.encoding", "console")
		Debug = true
	}

	return nil
}

// bindEnvVars maps the flat environment contract onto namespaced config keys.
func bindEnvVars() error {
	bindings := map[string][]string{
		"auth.secret_key":       {"SECRET_KEY"},
		"auth.algorithm":        {"ALGORITHM"},
		"auth.dev":              {"DEV"},
		"postgres.db":           {"POSTGRES_DB"},
		"postgres.user":         {"POSTGRES_USER"},
		"postgres.password":     {"POSTGRES_PASSWORD"},
		"postgres.host":         {"POSTGRES_HOST"},
		"postgres.port":         {"POSTGRES_PORT"},
		"qdrant.url":            {"QDRANT_URL"},
		"qdrant.port":           {"QDRANT_PORT"},
		"embedder.url":          {"EMBEDDER_URL"},
		"embedder.dimension":    {"EMBEDDER_DIMENSION"},
		"server.address":        {"SERVER_ADDRESS"},
		"logger.level":          {"LOG_LEVEL"},
		"logger.encoding":       {"LOG_FORMAT"},
		"crawler.schedule":      {"CRAWL_SCHEDULE"},
		"crawler.revisit_delta": {"REVISIT_DELTA"},
	}
	for key, envs := range bindings {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", envs[0], err)
		}
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("app", map[string]any{
		"name":        "openengine",
		"environment": "production",
		"debug":       false,
	})

	viper.SetDefault("logger", map[string]any{
		"level":       "info",
		"development": false,
		"encoding":    "json",
	})

	viper.SetDefault("server", map[string]any{
		"address":       config.DefaultServerAddress,
		"read_timeout":  "15s",
		"write_timeout": "15s",
		"idle_timeout":  "60s",
	})

	viper.SetDefault("postgres", map[string]any{
		"host":     "localhost",
		"port":     config.DefaultPostgresPort,
		"user":     "postgres",
		"password": "",
		"db":       "openengine",
		"sslmode":  "disable",
	})

	viper.SetDefault("qdrant", map[string]any{
		"url":        "http://localhost",
		"port":       config.DefaultQdrantPort,
		"collection": config.DefaultCollection,
	})

	viper.SetDefault("embedder", map[string]any{
		"url":       config.DefaultEmbedderURL,
		"dimension": config.DefaultDimension,
		"timeout":   "30s",
	})

	viper.SetDefault("auth", map[string]any{
		"algorithm":      config.DefaultAlgorithm,
		"token_lifetime": "30m",
		"dev":            "false",
	})

	viper.SetDefault("crawler", map[string]any{
		"revisit_delta":   "24h",
		"fetch_timeout":   "7s",
		"max_iterations":  -1,
		"parsed_capacity": config.DefaultParsedCapacity,
		"schedule":        "",
	})
}
