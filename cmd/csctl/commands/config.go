package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/central-storage/csclient/internal/constants"
	"github.com/central-storage/csclient/pkg/csapi"
)

const (
	configDirName  = ".csctl"
	configFileName = "config.yml"
)

// Config represents the CLI configuration persisted in $HOME/.csctl/config.yml.
type Config struct {
	API            string        `json:"api,omitempty"              yaml:"api,omitempty"`
	Token          string        `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time    `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	Username       string        `json:"username,omitempty"         yaml:"username,omitempty"`
	Output         string        `json:"output,omitempty"           yaml:"output,omitempty"`
	Cache          CacheSettings `json:"cache"                      yaml:"cache,omitempty"`
}

// CacheSettings selects the response cache backend.
type CacheSettings struct {
	// Type is memory, nats or none. Empty disables caching.
	Type    string `json:"type,omitempty"     yaml:"type,omitempty"`
	NATSURL string `json:"nats_url,omitempty" yaml:"nats_url,omitempty"`
	Bucket  string `json:"bucket,omitempty"   yaml:"bucket,omitempty"`
}

// CacheConfig converts the settings into a library cache configuration. It returns nil when caching is off.
func (s CacheSettings) CacheConfig() *csapi.CacheConfig {
	switch csapi.CacheType(s.Type) {
	case csapi.CacheTypeMemory:
		return csapi.DefaultCacheConfig()
	case csapi.CacheTypeNATS:
		return &csapi.CacheConfig{
			Type:    csapi.CacheTypeNATS,
			NATS:    &csapi.NATSKVConfig{URL: s.NATSURL, Bucket: s.Bucket},
			Options: csapi.DefaultCacheOptions(),
		}
	default:
		return nil
	}
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the csctl configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration. The token is masked in table output.",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			return renderOutput(cmd.OutOrStdout(), config, func() error {
				return renderProperties(cmd.OutOrStdout(), configRows(config))
			})
		},
	}
}

func configRows(config *Config) [][]string {
	token := NotAvailable
	if config.Token != "" {
		token = "***"
	}

	expires := NotAvailable
	if config.TokenExpiresAt != nil {
		expires = config.TokenExpiresAt.Format(constants.DateTimeFormat)
	}

	return [][]string{
		{"API", orNotAvailable(config.API)},
		{"Username", orNotAvailable(config.Username)},
		{"Token", token},
		{"Token Expires", expires},
		{"Output", orNotAvailable(config.Output)},
		{"Cache", orNotAvailable(config.Cache.Type)},
		{"Config File", orNotAvailable(configFilePath())},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set one of: api, username, output, cache.type, cache.nats_url, cache.bucket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "api":
		config.API = value
		// a token is only valid for the server that issued it
		config.Token = ""
		config.TokenExpiresAt = nil
	case "username":
		config.Username = value
	case "output":
		config.Output = value
	case "cache.type":
		config.Cache.Type = value
	case "cache.nats_url":
		config.Cache.NATSURL = value
	case "cache.bucket":
		config.Cache.Bucket = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}

	return nil
}

// loadConfig builds the effective configuration from the config file, CSCTL_* variables and flags.
func loadConfig() *Config {
	config := &Config{
		API:      viper.GetString("api"),
		Token:    viper.GetString("token"),
		Username: viper.GetString("username"),
		Output:   viper.GetString("output"),
		Cache: CacheSettings{
			Type:    viper.GetString("cache.type"),
			NATSURL: viper.GetString("cache.nats_url"),
			Bucket:  viper.GetString("cache.bucket"),
		},
	}

	if expiresAt := viper.GetTime("token_expires_at"); !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	return config
}

func configFilePath() string {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, configDirName, configFileName)
}

func saveConfigStruct(config *Config) error {
	configFile := configFilePath()
	if configFile == "" {
		return ErrNoConfigPath
	}

	err := os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// keep viper in sync so later reads in this process see the new values
	viper.Set("api", config.API)
	viper.Set("token", config.Token)
	viper.Set("username", config.Username)
	viper.Set("output", config.Output)
	viper.Set("cache.type", config.Cache.Type)
	viper.Set("cache.nats_url", config.Cache.NATSURL)
	viper.Set("cache.bucket", config.Cache.Bucket)

	expires := ""
	if config.TokenExpiresAt != nil {
		expires = config.TokenExpiresAt.Format(time.RFC3339)
	}

	viper.Set("token_expires_at", expires)

	return nil
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}
