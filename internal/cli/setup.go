package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perchbrowser/perch/internal/desktop"
)

// NewSetupCmd creates the setup command for desktop integration.
func NewSetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Desktop integration",
		Long:  `Install the .desktop entry and register perch as the default browser.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return setupStatus()
		},
	}

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install the .desktop entry",
		RunE: func(_ *cobra.Command, _ []string) error {
			adapter := desktop.New()
			path, err := adapter.InstallDesktopFile(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("Installed: %s\n", path)
			return nil
		},
	}

	uninstallCmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the .desktop entry",
		RunE: func(_ *cobra.Command, _ []string) error {
			adapter := desktop.New()
			if err := adapter.RemoveDesktopFile(context.Background()); err != nil {
				return err
			}
			fmt.Println("Desktop entry removed.")
			return nil
		},
	}

	defaultCmd := &cobra.Command{
		Use:   "default",
		Short: "Register perch as the default web browser",
		RunE: func(_ *cobra.Command, _ []string) error {
			adapter := desktop.New()
			if err := adapter.SetAsDefaultBrowser(context.Background()); err != nil {
				return err
			}
			fmt.Println("perch is now the default browser.")
			return nil
		},
	}

	cmd.AddCommand(installCmd)
	cmd.AddCommand(uninstallCmd)
	cmd.AddCommand(defaultCmd)

	return cmd
}

// setupStatus prints the current integration state.
func setupStatus() error {
	adapter := desktop.New()
	status, err := adapter.GetStatus(context.Background())
	if err != nil {
		return err
	}

	fmt.Println("Desktop integration status:")
	fmt.Printf("- Desktop entry installed: %v (%s)\n", status.DesktopFileInstalled, status.DesktopFilePath)
	fmt.Printf("- Default browser: %v\n", status.IsDefaultBrowser)
	if status.ExecutablePath != "" {
		fmt.Printf("- Executable: %s\n", status.ExecutablePath)
	}
	return nil
}
