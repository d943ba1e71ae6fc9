// Package main is the entry point of the burndown CLI.
package main

import (
	"errors"
	"os"

	"github.com/huangsam/burndown/cmd"
	"github.com/huangsam/burndown/core"
	"github.com/huangsam/burndown/internal/contract"
	"github.com/huangsam/burndown/internal/iocache"
)

// Exit statuses of the CLI.
const (
	exitError       = 1
	exitCheckFailed = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	defer iocache.CloseStores()

	cmd.SetCacheManager(iocache.Manager)
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, core.ErrCheckFailed) {
			contract.LogWarn("Target check failed", err)
			return exitCheckFailed
		}
		contract.Logger.WithError(err).Error("burndown failed")
		return exitError
	}
	return 0
}
