package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/perchbrowser/perch/internal/parser"
)

// NewBrowseCmd creates the browse command.
func NewBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <url|query>",
		Short: "Browse a URL or search query",
		Long: `Browse a URL directly or use search shortcuts like:
  g: golang     -> Google search for "golang"
  gh: cobra     -> GitHub search for "cobra"
  yt: tutorials -> YouTube search for "tutorials"
  w: go         -> Wikipedia search for "go"

Direct URLs are also supported:
  https://example.com
  example.com (automatically adds https://)

Anything else becomes a web search with the default engine.

Without arguments the browser opens on the configured homepage.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Desktop launchers run "perch browse %U" which expands to no
			// arguments when no URL was clicked.
			if len(args) == 0 {
				return spawnGUI("")
			}
			return withCLI(func(cli *CLI) error {
				return browse(cli, args[0])
			})
		},
	}
}

// browse resolves input, records the visit, and hands the URL to a
// detached GUI process.
func browse(cli *CLI, input string) error {
	ctx := context.Background()

	p := parser.New(cli.Config, cli.History)
	result, err := p.Parse(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to parse input: %w", err)
	}

	// History failures never block the browse.
	if err := cli.History.AddOrUpdateVisit(ctx, result.URL); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record history: %v\n", err)
	}

	return spawnGUI(result.URL)
}

// spawnGUI launches this binary in GUI mode, detached, so the CLI (and
// whatever launcher invoked it) returns immediately.
func spawnGUI(url string) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := exec.Command(executable, "browse", url)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Env = append(os.Environ(), guiModeEnv+"=1")

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	if err := cmd.Process.Release(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to release browser process: %v\n", err)
	}

	if url != "" {
		fmt.Printf("Opening: %s\n", url)
	}
	return nil
}

// guiModeEnv marks a process as the GUI re-entry so `browse` does not
// recursively spawn.
const guiModeEnv = "PERCH_GUI"
