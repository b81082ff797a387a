package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tgstore/internal/app"
	"tgstore/internal/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer
// a.Close(). operation identifies the CLI command being run.
func newApp(operation string) (*app.App, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.New(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

var rootCmd = &cobra.Command{
	Use:   "tgstore",
	Short: "Telegram file storage bot",
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Println("Set bot_token in the config file or export TELEGRAM_BOT_TOKEN.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:       %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:        %s\n", cfg.LogDir)
		fmt.Printf("Database:       %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Server Addr:    %s\n", cfg.Server.Addr)
		fmt.Printf("Max upload:     %d bytes\n", cfg.Limits.MaxUploadBytes)
		fmt.Printf("Max download:   %d bytes\n", cfg.Limits.MaxDownloadBytes)
		fmt.Printf("Platform limit: %d bytes\n", cfg.Limits.PlatformMaxBytes)
		fmt.Printf("File quota:     %d per user\n", cfg.Limits.MaxFilesPerOwner)
		return nil
	},
}

// run command - long polling mode

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot in long-polling mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Run")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := a.RunPolling(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("running bot: %w", err)
		}
		return nil
	},
}

// serve command - webhook mode

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Serve")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := a.RunWebhookServer(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("running webhook server: %w", err)
		}
		return nil
	},
}

// webhook command - registration management

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage the Telegram webhook registration",
}

var webhookSetCmd = &cobra.Command{
	Use:   "set <url>",
	Short: "Register a webhook URL with Telegram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("WebhookSet")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetWebhook(args[0]); err != nil {
			return err
		}
		fmt.Printf("Webhook set: %s\n", args[0])
		return nil
	},
}

var webhookInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the current webhook registration",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("WebhookInfo")
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.WebhookInfo()
		if err != nil {
			return err
		}
		fmt.Println(summary)
		return nil
	},
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the webhook registration (switch back to polling)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("WebhookDelete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteWebhook(); err != nil {
			return err
		}
		fmt.Println("Webhook deleted")
		return nil
	},
}

// db command

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the metadata database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema up to date",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		if err := app.MigrateStore(cfg); err != nil {
			return err
		}
		fmt.Println("Database schema is up to date")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	webhookCmd.AddCommand(webhookSetCmd)
	webhookCmd.AddCommand(webhookInfoCmd)
	webhookCmd.AddCommand(webhookDeleteCmd)
	dbCmd.AddCommand(dbMigrateCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webhookCmd)
	rootCmd.AddCommand(dbCmd)
}
