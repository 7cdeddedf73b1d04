package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	"github.com/ledgerkit/reconcile/classify"
)

// WatchCmd re-indexes the ledger file and re-runs reconciliation every
// time it changes on disk, so a host editor saving the file triggers a
// fresh pass without restarting the process.
type WatchCmd struct {
	RunCmd
}

func (cmd *WatchCmd) Run(ctx *kong.Context, globals *Globals) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(cmd.File); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cmd.File, err)
	}

	classifier := classify.NewFrequencyClassifier()
	editor := dryRunEditor{w: ctx.Stdout}

	run := func() {
		accepted, err := cmd.RunCmd.execute(context.Background(), jsonParser{}, classifier, editor, ctx.Stdout)
		if err != nil {
			printError(ctx.Stderr, err.Error())
			return
		}
		printSuccess(ctx.Stdout, fmt.Sprintf("%d candidate(s) accepted", accepted))
	}

	printInfof(ctx.Stdout, "watching %s", cmd.File)
	run()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			printInfof(ctx.Stdout, "%s changed, re-running", cmd.File)
			run()
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printError(ctx.Stderr, watchErr.Error())
		}
	}
}
