// Command imgsim indexes and searches images from the command line.
//
// Flags can also be set through IMGSIM_* environment variables or a .env file
// in the working directory, e.g. IMGSIM_DB=/data/photos.db.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
