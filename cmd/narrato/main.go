package main

import (
	"fmt"
	"os"

	"narrato/internal/cli"
	"narrato/internal/i18n"
)

// Version information (set by ldflags during build)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	cli.SetVersionInfo(version, buildTime, gitCommit)

	if err := cli.Execute(); err != nil {
		i18nMgr, i18nErr := i18n.NewManager(i18n.SystemLocale())
		if i18nErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, i18nMgr.Get("main_error"), err)
		}
		os.Exit(1)
	}
}
