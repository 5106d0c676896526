// Command scriven is a voice dictation engine: it streams microphone
// audio to a recognition service and types the transcript into a text
// buffer as you speak. This entry point drives an in-memory buffer and
// prints the result on stop; editor hosts embed internal/app directly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/scrivenapp/scriven/editbuf"
	"github.com/scrivenapp/scriven/internal/app"
	"github.com/scrivenapp/scriven/internal/types"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	noRewrite := flag.Bool("no-rewrite", false, "skip the rewrite pass on stop")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*noRewrite); err != nil {
		slog.Error("scriven", "error", err)
		os.Exit(1)
	}
}

func run(noRewrite bool) error {
	buf := editbuf.New("")

	idle := make(chan struct{})
	var idleOnce sync.Once

	svc := app.New(version)
	svc.Init(buf, func(name string, data any) {
		switch name {
		case app.EventDictationPartial:
			fmt.Fprintf(os.Stderr, "\r\033[K… %v", data)
		case app.EventDictationFinal:
			fmt.Fprintf(os.Stderr, "\r\033[Ksegment: %v\n", data)
		case app.EventDictationState:
			slog.Info("session state", "state", data)
			if data == types.Inactive.String() {
				idleOnce.Do(func() { close(idle) })
			}
		}
	})
	defer svc.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.StartDictation(ctx); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "dictating, press ctrl-c to stop")

	select {
	case <-ctx.Done():
		stop()
		if noRewrite {
			svc.CancelDictation()
		} else {
			svc.StopDictation()
		}
		<-idle
	case <-idle:
		// Session ended on its own (hotkey toggle or device loss).
	}

	fmt.Print(buf.Contents())
	return nil
}
