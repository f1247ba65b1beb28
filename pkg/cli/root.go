package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/flowcanvas/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	// Version is the current version of flowcanvas
	Version = "1.0.0"

	// ConfigDirEnv overrides the configuration directory
	ConfigDirEnv = "FLOWCANVAS_CONFIG_DIR"
)

// Config holds the global configuration for the flowcanvas CLI
type Config struct {
	ConfigDir string
	Debug     bool

	// Settings is loaded from config.yaml before any subcommand runs
	Settings *FileConfig
	Logger   *zap.Logger
}

// GlobalConfig is the shared configuration instance
var GlobalConfig = &Config{}

// NewRootCommand creates the root cobra command for flowcanvas
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flowcanvas",
		Short: "flowcanvas - flowchart editing core for decision checklists",
		Long: `flowcanvas works with the flowchart documents embedded in decision checklists.
It validates, renders and routes diagrams, keeps a local working copy and
exchanges flowcharts with the checklist service.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			logger, err := logging.New(GlobalConfig.Debug)
			if err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}
			GlobalConfig.Logger = logger
			logger.Debug("configuration loaded",
				zap.String("dir", GlobalConfig.ConfigDir),
				zap.String("store", GlobalConfig.Settings.Store))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if GlobalConfig.Logger != nil {
				_ = GlobalConfig.Logger.Sync()
			}
		},
	}

	// Persistent flags (available to all subcommands)
	cmd.PersistentFlags().BoolVar(&GlobalConfig.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&GlobalConfig.ConfigDir, "config-dir", "", "Configuration directory (default: ~/.flowcanvas)")

	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewImportCommand())
	cmd.AddCommand(NewShowCommand())
	cmd.AddCommand(NewRouteCommand())
	cmd.AddCommand(NewNodesCommand())
	cmd.AddCommand(NewLocalCommand())
	cmd.AddCommand(NewChecklistCommand())
	cmd.AddCommand(NewCredentialCommand())

	return cmd
}

// initConfig creates the configuration directory and loads config.yaml,
// writing the defaults on first run
func initConfig() error {
	// Environment variable always takes priority (for testing)
	if envDir := os.Getenv(ConfigDirEnv); envDir != "" {
		GlobalConfig.ConfigDir = envDir
	} else if GlobalConfig.ConfigDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
		GlobalConfig.ConfigDir = filepath.Join(homeDir, ".flowcanvas")
	}

	if err := os.MkdirAll(GlobalConfig.ConfigDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := GetConfigPath()
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := SaveFileConfig(configFile, DefaultFileConfig()); err != nil {
			return err
		}
	}

	settings, err := LoadFileConfig(configFile)
	if err != nil {
		return err
	}
	GlobalConfig.Settings = settings
	return nil
}

// GetConfigDir returns the configuration directory path
// Priority order: 1) FLOWCANVAS_CONFIG_DIR env var, 2) GlobalConfig.ConfigDir, 3) ~/.flowcanvas
func GetConfigDir() string {
	if envDir := os.Getenv(ConfigDirEnv); envDir != "" {
		return envDir
	}
	if GlobalConfig.ConfigDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to current directory if home dir cannot be determined
			return ".flowcanvas"
		}
		return filepath.Join(homeDir, ".flowcanvas")
	}
	return GlobalConfig.ConfigDir
}

// GetConfigPath returns the path of config.yaml
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// settings returns the loaded configuration, or the defaults when a command
// runs without the root pre-run hook
func settings() *FileConfig {
	if GlobalConfig.Settings == nil {
		return DefaultFileConfig()
	}
	return GlobalConfig.Settings
}

// logger returns the CLI logger, never nil
func logger() *zap.Logger {
	return logging.OrNop(GlobalConfig.Logger)
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}
