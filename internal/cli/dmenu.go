package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const dmenuHistoryLimit = 50

// NewDmenuCmd creates the dmenu command for launcher integration.
func NewDmenuCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dmenu",
		Short: "Print history and bookmarks for launcher integration",
		Long: `Print recent history and bookmarks, one line each, for piping
through a dmenu-style launcher.

Usage with rofi:
  perch dmenu | rofi -dmenu -p "Browse: " | perch dmenu --select

Usage with fuzzel:
  perch dmenu | fuzzel --dmenu -p "Browse: " | perch dmenu --select`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selectFlag := cmd.Flag("select").Changed

			return withCLI(func(cli *CLI) error {
				if selectFlag {
					return handleSelection(cli)
				}
				return printOptions(cli)
			})
		},
	}

	cmd.Flags().Bool("select", false, "Process selection from launcher (reads from stdin)")
	return cmd
}

// printOptions writes bookmark and history lines to stdout. Bookmarks come
// first so they stay reachable even with a long history.
func printOptions(cli *CLI) error {
	ctx := context.Background()

	bookmarkURLs, err := cli.Bookmarks.List()
	if err != nil {
		return fmt.Errorf("failed to list bookmarks: %w", err)
	}
	for _, u := range bookmarkURLs {
		fmt.Println(formatDmenuLine("★ "+bookmarkTitle(ctx, cli, u), u))
	}

	entries, err := cli.History.Recent(ctx, dmenuHistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}
	for _, entry := range entries {
		title := entry.Title
		if title == "" {
			title = "[" + domainOf(entry.URL) + "]"
		}
		fmt.Println(formatDmenuLine(title, entry.URL))
	}

	return nil
}

// handleSelection reads the chosen line from stdin and browses it.
func handleSelection(cli *CLI) error {
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return fmt.Errorf("no input received")
	}

	input := parseSelection(scanner.Text())
	if input == "" {
		return fmt.Errorf("empty selection")
	}

	return browse(cli, input)
}

// bookmarkTitle resolves a display title for a bookmarked URL from history
// metadata, falling back to the domain for never-visited bookmarks.
func bookmarkTitle(ctx context.Context, cli *CLI, u string) string {
	if entry, err := cli.History.GetByURL(ctx, u); err == nil && entry.Title != "" {
		return entry.Title
	}
	return domainOf(u)
}

// formatDmenuLine renders "title | domain | url" with a pipe separator for
// rofi/fuzzel compatibility. The URL field is never truncated; it is what
// parseSelection hands back to browse.
func formatDmenuLine(title, rawURL string) string {
	return fmt.Sprintf("%s | %s | %s",
		truncateString(title, 50),
		domainOf(rawURL),
		rawURL)
}

// parseSelection extracts the URL (or raw query) from a selected line.
// Lines produced by printOptions carry the URL in the last pipe-separated
// field; anything else is treated as direct input.
func parseSelection(selection string) string {
	selection = strings.TrimSpace(selection)

	if strings.Contains(selection, " | ") {
		parts := strings.Split(selection, " | ")
		if len(parts) >= 3 {
			return strings.TrimSpace(parts[len(parts)-1])
		}
		if len(parts) == 2 {
			last := strings.TrimSpace(parts[1])
			if strings.Contains(last, "://") || strings.Contains(last, ".") {
				return last
			}
		}
	}

	return selection
}

// domainOf returns the host of a URL, or "local" when there is none.
func domainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "local"
	}
	return parsed.Host
}

// truncateString truncates a string to maxLen with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	const minEllipsisLength = 3
	if maxLen <= minEllipsisLength {
		return s[:maxLen]
	}

	return s[:maxLen-minEllipsisLength] + "..."
}
