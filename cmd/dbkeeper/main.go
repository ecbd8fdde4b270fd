// Command dbkeeper runs database and cache maintenance tasks as a single
// finite batch.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/orchestrator"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "dbkeeper:", err)
	}
	os.Exit(orchestrator.ExitCode(err))
}
