// Package cli provides the command-line interface for perch.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/perchbrowser/perch/internal/bookmarks"
	"github.com/perchbrowser/perch/internal/config"
	"github.com/perchbrowser/perch/internal/history"
)

// CLI bundles the stores and configuration the commands operate on.
type CLI struct {
	History   *history.Store
	Bookmarks *bookmarks.Store
	Config    *config.Config
}

// NewCLI loads configuration and opens the history and bookmark stores.
func NewCLI() (*CLI, error) {
	if err := config.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg := config.Get()

	hist, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	store, err := bookmarks.NewStore(cfg.Bookmarks.Path)
	if err != nil {
		_ = hist.Close()
		return nil, fmt.Errorf("failed to open bookmarks: %w", err)
	}

	return &CLI{
		History:   hist,
		Bookmarks: store,
		Config:    cfg,
	}, nil
}

// Close releases the CLI's resources.
func (c *CLI) Close() error {
	if c.History != nil {
		return c.History.Close()
	}
	return nil
}

// withCLI wraps a command body with CLI setup and teardown.
func withCLI(fn func(*CLI) error) error {
	cli, err := NewCLI()
	if err != nil {
		return fmt.Errorf("failed to initialize CLI: %w", err)
	}
	defer func() {
		if closeErr := cli.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close history: %v\n", closeErr)
		}
	}()

	return fn(cli)
}

// NewRootCmd creates the root command for perch.
func NewRootCmd(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "perch [url]",
		Short: "A small tabbed WebKit browser",
		Long:  `A tabbed WebKitGTK browser with a flat-file bookmark store and launcher integration.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return withCLI(func(cli *CLI) error {
					return browse(cli, args[0])
				})
			}
			return cmd.Help()
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("perch %s\n", version)
			fmt.Printf("commit: %s\n", commit)
			fmt.Printf("built: %s\n", buildDate)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(NewBrowseCmd())
	rootCmd.AddCommand(NewBookmarksCmd())
	rootCmd.AddCommand(NewDmenuCmd())
	rootCmd.AddCommand(NewSetupCmd())

	return rootCmd
}
