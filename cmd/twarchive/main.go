package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"twarchive/internal/app"
	"twarchive/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
func newApp() (*app.App, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.New(cfg)
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

// readPassphrase prompts for a passphrase without echoing it.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

var rootCmd = &cobra.Command{
	Use:   "twarchive",
	Short: "Recursive tweet archiver",
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
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Create config with defaults
		cfg := config.NewConfig(defaults["base_dir"])

		// Initialize config file
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
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
		fmt.Printf("Accounts:   %s\n", strings.Join(cfg.Accounts, ", "))
		fmt.Printf("Workers:    %d\n", cfg.Workers)
		fmt.Printf("Group Size: %d\n", cfg.GroupSize)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Database:   %s\n", cfg.Database.Type)
		fmt.Printf("Blob Store: %s\n", cfg.BlobStore.Type)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate encryption keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		passphrase, err := readPassphrase("Passphrase for the private key")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetupKeys(passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Println("Encryption keys generated.")
		return nil
	},
}

// run command
var runCmd = &cobra.Command{
	Use:   "run [ACCOUNT...]",
	Short: "Archive accounts and everything they reference",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Run(context.Background(), args); err != nil {
			return fmt.Errorf("run failed: %w", err)
		}
		return nil
	},
}

// runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "View archiving run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.ListRuns(context.Background(), limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := ""
			if r.FinishedAt != nil {
				duration = r.FinishedAt.Sub(r.StartedAt).Truncate(time.Second).String()
			}
			fmt.Printf("%s  %s  %-7s  %s  archived:%d skipped:%d missing:%d failed:%d  %s\n",
				r.ID[:8],
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Status,
				r.Accounts,
				r.Archived,
				r.Skipped,
				r.Missing,
				r.Failed,
				duration,
			)
		}
		return nil
	},
}

// media command
var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Access archived media",
}

var mediaExportCmd = &cobra.Command{
	Use:   "export DIGEST OUTPUT",
	Short: "Write an archived asset to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		passphrase := ""
		if cfg.BlobStore.Encrypt {
			passphrase, err = readPassphrase("Passphrase for the private key")
			if err != nil {
				return err
			}
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ExportMedia(context.Background(), args[0], args[1], passphrase); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Printf("Exported %s to %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// media subcommands
	mediaCmd.AddCommand(mediaExportCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")
	rootCmd.AddCommand(mediaCmd)
}
