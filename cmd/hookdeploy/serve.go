package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"hookdeploy/internal/config"
	"hookdeploy/internal/dispatch"
	"hookdeploy/internal/security"
	"hookdeploy/internal/server"
	"hookdeploy/pkg/fileutil"
)

const configFileName = "hookdeploy.yaml"

var (
	configFile string
	logFile    string
	secret     string
	branches   string
	script     string
	host       string
	port       int
	serialize  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Long: `Start the HTTP server to receive GitHub webhook requests.

Configuration is read from hookdeploy.yaml; flags and HOOKDEPLOY_* variables
override individual file values. The process refuses to start when the
configuration is invalid or any configured script is unsafe or missing.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&configFile, "config", "c", getEnvOrDefault("HOOKDEPLOY_CONFIG_FILE", ""), "Path to hookdeploy.yaml configuration file")
	serveCmd.Flags().StringVar(&logFile, "log", getEnvOrDefault("HOOKDEPLOY_LOG_FILE", ""), "Path to log file (in addition to stdout)")
	serveCmd.Flags().StringVar(&secret, "secret", os.Getenv("HOOKDEPLOY_SECRET"), "Webhook secret (overrides config file)")
	serveCmd.Flags().StringVar(&branches, "branches", os.Getenv("HOOKDEPLOY_BRANCHES"), "Comma-separated allowed branches (overrides config file)")
	serveCmd.Flags().StringVar(&script, "script", os.Getenv("HOOKDEPLOY_SCRIPT"), "Single global deployment script (overrides config file)")
	serveCmd.Flags().StringVar(&host, "host", os.Getenv("HOOKDEPLOY_HOST"), "Host to bind to")
	serveCmd.Flags().IntVarP(&port, "port", "p", getEnvOrDefaultInt("HOOKDEPLOY_PORT", 0), "Port to listen on")
	serveCmd.Flags().BoolVar(&serialize, "serialize", os.Getenv("HOOKDEPLOY_SERIALIZE") == "1", "Serialize deployments per repository")
}

// loadSettings resolves the config file, layers flag/env overrides on top,
// and validates the result. Any error here is fatal before the listener
// binds.
func loadSettings() (*config.Settings, error) {
	var file *config.File

	path := configFile
	if path == "" {
		path = fileutil.SearchPathsOptional(fileutil.DefaultConfigPaths(configFileName))
	}

	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		file = loaded
	} else {
		// No file: everything must come from flags and environment
		file = &config.File{}
	}

	if secret != "" {
		file.Secret = secret
	}
	if branches != "" {
		file.Branches = config.ParseBranches(branches)
	}
	if script != "" {
		file.Script = script
		file.Repositories = nil
	}
	if host != "" {
		file.Host = host
	}
	if port != 0 {
		file.Port = port
	}
	if serialize {
		file.Serialize = true
	}

	return config.Build(file)
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, logFileHandle, err := setupLogging(logFile)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	if logFileHandle != nil {
		defer logFileHandle.Close()
	}

	logger.Info("Starting hookdeploy",
		"targets", settings.TargetCount(),
		"branches", settings.Branches,
		"serialize", settings.Serialize)

	dispatcher := dispatch.NewDispatcher(logger, settings.Serialize)
	srv := server.NewServer(settings, dispatcher, logger, false)

	logger.Info("Starting HTTP server", "host", settings.Host, "port", settings.Port)
	if err := srv.Start(settings.Host, settings.Port); err != nil {
		logger.Error("Server failed", "error", err)
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// setupLogging configures slog with a JSON handler. When logPath is set the
// log is written to both stdout and the file; the caller must close the
// returned file handle.
func setupLogging(logPath string) (*slog.Logger, *os.File, error) {
	var w io.Writer = os.Stdout
	var file *os.File

	if logPath != "" {
		logDir := filepath.Dir(logPath)
		if err := os.MkdirAll(logDir, security.PermDirectory); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, security.PermLogFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		w = io.MultiWriter(os.Stdout, f)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	return slog.New(handler), file, nil
}
