package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philipparndt/roofmeasure/pkg/watcher"
)

var watchOpts replayOptions

var watchCmd = &cobra.Command{
	Use:   "watch [script] [mesh]",
	Short: "Replay a script again whenever it or its mesh changes",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addReplayFlags(watchCmd, &watchOpts)
}

func runWatch(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	scriptPath := args[0]
	meshArg := ""
	if len(args) > 1 {
		meshArg = args[1]
	}
	out := cmd.OutOrStdout()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fw, err := watcher.NewFileWatcher(500*time.Millisecond, log.Named("watcher"))
	if err != nil {
		return err
	}
	defer fw.Close()

	// A rendered model may gain or lose includes, so every run re-registers
	// the files it depends on.
	var mu sync.Mutex
	var run func()
	run = func() {
		mu.Lock()
		defer mu.Unlock()
		files, err := replay(ctx, out, scriptPath, meshArg, watchOpts, log)
		if err != nil {
			log.Error("replay failed", zap.Error(err))
		}
		if err := fw.RemoveAll(); err != nil {
			log.Warn("could not reset watched files", zap.Error(err))
		}
		files = existing(files)
		if err := fw.Watch(files, func(path string) {
			fmt.Fprintf(out, "\n%s changed, replaying\n", path)
			run()
		}); err != nil {
			log.Error("could not watch files", zap.Error(err))
			return
		}
		log.Info("watching for changes", zap.Strings("files", files))
	}

	run()
	fw.Start()
	<-ctx.Done()
	return nil
}

func existing(files []string) []string {
	out := files[:0]
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			out = append(out, f)
		}
	}
	return out
}
