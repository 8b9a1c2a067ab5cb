package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/perchbrowser/perch/internal/app/browser"
	"github.com/perchbrowser/perch/internal/cli"
)

// Build-time variables (set via ldflags).
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	enableCrashForensics()

	// `perch browse <url>` from a terminal goes through the cobra command,
	// which resolves the input and re-spawns this binary detached with
	// PERCH_GUI set. That re-entry runs the GUI directly.
	if len(os.Args) > 1 && os.Args[1] == "browse" && os.Getenv("PERCH_GUI") != "" {
		initialURL := ""
		if len(os.Args) > 2 {
			initialURL = os.Args[2]
		}
		os.Exit(runGUI(initialURL))
	}

	rootCmd := cli.NewRootCmd(version, commit, buildDate)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGUI(initialURL string) int {
	runtime.LockOSThread()

	if err := browser.Run(context.Background(), version, initialURL); err != nil {
		fmt.Fprintf(os.Stderr, "perch: %v\n", err)
		return 1
	}
	return 0
}
