// Package desktop provides desktop environment integration for Linux (XDG).
package desktop

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/perchbrowser/perch/internal/logging"
)

const (
	appName         = "perch"
	desktopFileName = "perch.desktop"
	filePerm        = 0644
	dirPerm         = 0755
)

// desktopFileTemplate is the freedesktop.org desktop entry format.
// %s placeholder for executable path.
const desktopFileTemplate = `[Desktop Entry]
Version=1.1
Type=Application
Name=Perch
GenericName=Web Browser
Comment=A small tabbed WebKit browser
Exec=%s browse %%U
Icon=perch
Terminal=false
Categories=Network;WebBrowser;
MimeType=text/html;text/xml;application/xhtml+xml;x-scheme-handler/http;x-scheme-handler/https;
StartupNotify=true
StartupWMClass=perch
`

// Status describes the current desktop integration state.
type Status struct {
	DesktopFileInstalled bool
	DesktopFilePath      string
	ExecutablePath       string
	IsDefaultBrowser     bool
}

// Adapter integrates with the host desktop through XDG tools.
type Adapter struct {
	xdgOpenPath     string
	xdgSettingsPath string
	updateDesktopDB string
}

// New creates a new desktop integration adapter, detecting available XDG
// tooling on PATH.
func New() *Adapter {
	a := &Adapter{}

	if path, err := exec.LookPath("xdg-open"); err == nil {
		a.xdgOpenPath = path
	}
	if path, err := exec.LookPath("xdg-settings"); err == nil {
		a.xdgSettingsPath = path
	}
	if path, err := exec.LookPath("update-desktop-database"); err == nil {
		a.updateDesktopDB = path
	}

	return a
}

// OpenPath hands a local file or directory to the desktop's default
// handler. Used to open finished downloads.
func (a *Adapter) OpenPath(ctx context.Context, path string) error {
	if a.xdgOpenPath == "" {
		return fmt.Errorf("xdg-open not found (install xdg-utils)")
	}

	cmd := exec.CommandContext(ctx, a.xdgOpenPath, path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	// xdg-open returns quickly; don't hold the GUI on its exit status.
	go func() { _ = cmd.Wait() }()

	logging.FromContext(ctx).Debug().Str("path", path).Msg("opened with xdg-open")
	return nil
}

// getApplicationsDir returns the XDG applications directory.
func getApplicationsDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "applications"), nil
}

func getDesktopFilePath() (string, error) {
	appDir, err := getApplicationsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, desktopFileName), nil
}

// getExecutablePath returns the path to the perch executable.
func getExecutablePath() (string, error) {
	execPath, err := os.Executable()
	if err == nil {
		if resolved, symlinkErr := filepath.EvalSymlinks(execPath); symlinkErr == nil {
			execPath = resolved
		}
		return execPath, nil
	}

	path, err := exec.LookPath(appName)
	if err != nil {
		return "", fmt.Errorf("cannot find %s executable: %w", appName, err)
	}
	return path, nil
}

// GetStatus checks the current desktop integration state.
func (a *Adapter) GetStatus(ctx context.Context) (*Status, error) {
	status := &Status{}

	desktopPath, err := getDesktopFilePath()
	if err != nil {
		return nil, err
	}
	status.DesktopFilePath = desktopPath

	if _, statErr := os.Stat(desktopPath); statErr == nil {
		status.DesktopFileInstalled = true
	}

	if execPath, err := getExecutablePath(); err == nil {
		status.ExecutablePath = execPath
	}

	if a.xdgSettingsPath != "" {
		out, err := exec.CommandContext(ctx, a.xdgSettingsPath, "get", "default-web-browser").Output()
		if err == nil {
			status.IsDefaultBrowser = strings.TrimSpace(string(out)) == desktopFileName
		}
	}

	logging.FromContext(ctx).Debug().
		Bool("desktop_installed", status.DesktopFileInstalled).
		Bool("default", status.IsDefaultBrowser).
		Str("desktop_path", status.DesktopFilePath).
		Msg("desktop integration status")

	return status, nil
}

// InstallDesktopFile writes the desktop file to the XDG applications
// directory.
func (a *Adapter) InstallDesktopFile(ctx context.Context) (string, error) {
	log := logging.FromContext(ctx)

	execPath, err := getExecutablePath()
	if err != nil {
		return "", err
	}

	desktopPath, err := getDesktopFilePath()
	if err != nil {
		return "", err
	}

	appDir := filepath.Dir(desktopPath)
	if err := os.MkdirAll(appDir, dirPerm); err != nil {
		return "", fmt.Errorf("create applications dir: %w", err)
	}

	content := fmt.Sprintf(desktopFileTemplate, execPath)
	if err := os.WriteFile(desktopPath, []byte(content), filePerm); err != nil {
		return "", fmt.Errorf("write desktop file: %w", err)
	}

	log.Info().Str("path", desktopPath).Msg("desktop file installed")

	// Update desktop database (optional, helps with some DEs)
	if a.updateDesktopDB != "" {
		if err := exec.CommandContext(ctx, a.updateDesktopDB, appDir).Run(); err != nil {
			log.Debug().Err(err).Msg("update-desktop-database failed (non-fatal)")
		}
	}

	return desktopPath, nil
}

// RemoveDesktopFile removes the desktop file from the XDG applications
// directory.
func (a *Adapter) RemoveDesktopFile(ctx context.Context) error {
	log := logging.FromContext(ctx)

	desktopPath, err := getDesktopFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(desktopPath); os.IsNotExist(err) {
		log.Debug().Str("path", desktopPath).Msg("desktop file not found (already removed)")
		return nil
	}

	if err := os.Remove(desktopPath); err != nil {
		return fmt.Errorf("remove desktop file: %w", err)
	}

	log.Info().Str("path", desktopPath).Msg("desktop file removed")

	if a.updateDesktopDB != "" {
		_ = exec.CommandContext(ctx, a.updateDesktopDB, filepath.Dir(desktopPath)).Run()
	}

	return nil
}

// SetAsDefaultBrowser registers perch as the default web browser.
func (a *Adapter) SetAsDefaultBrowser(ctx context.Context) error {
	if a.xdgSettingsPath == "" {
		return fmt.Errorf("xdg-settings not found (install xdg-utils)")
	}

	desktopPath, err := getDesktopFilePath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(desktopPath); os.IsNotExist(err) {
		return fmt.Errorf("desktop file not installed - run 'perch setup install' first")
	}

	cmd := exec.CommandContext(ctx, a.xdgSettingsPath, "set", "default-web-browser", desktopFileName)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("xdg-settings failed: %s", strings.TrimSpace(string(out)))
	}

	logging.FromContext(ctx).Info().Msg("perch set as default browser")
	return nil
}
