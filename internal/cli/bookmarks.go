package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// NewBookmarksCmd creates the bookmarks command group.
func NewBookmarksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "Manage bookmarks",
		Long:  `List, add, remove, and interactively pick bookmarks.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withCLI(listBookmarks)
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withCLI(func(cli *CLI) error {
				if err := cli.Bookmarks.Add(args[0]); err != nil {
					return err
				}
				fmt.Printf("Bookmarked: %s\n", args[0])
				return nil
			})
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <url>",
		Short: "Remove a bookmark (all occurrences)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withCLI(func(cli *CLI) error {
				if err := cli.Bookmarks.Remove(args[0]); err != nil {
					return err
				}
				fmt.Printf("Removed: %s\n", args[0])
				return nil
			})
		},
	}

	pickCmd := &cobra.Command{
		Use:   "pick",
		Short: "Interactively pick a bookmark to open",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withCLI(pickBookmark)
		},
	}

	cmd.AddCommand(addCmd)
	cmd.AddCommand(removeCmd)
	cmd.AddCommand(pickCmd)

	return cmd
}

var (
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
)

// listBookmarks renders the bookmark file as a table.
func listBookmarks(cli *CLI) error {
	urls, err := cli.Bookmarks.List()
	if err != nil {
		return err
	}

	if len(urls) == 0 {
		fmt.Println("No bookmarks yet. Add one with: perch bookmarks add <url>")
		return nil
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
		}).
		Headers("#", "URL")

	for i, url := range urls {
		t.Row(strconv.Itoa(i+1), url)
	}

	fmt.Println(t.Render())
	return nil
}

// pickBookmark runs the interactive picker and browses the selection.
func pickBookmark(cli *CLI) error {
	urls, err := cli.Bookmarks.List()
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		fmt.Println("No bookmarks to pick from.")
		return nil
	}

	selected, err := runPicker(urls)
	if err != nil {
		return err
	}
	if selected == "" {
		return nil
	}

	return browse(cli, selected)
}
