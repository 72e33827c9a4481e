// Command projector rebuilds read models from the stored events.
//
// Usage:
//
//	projector --from=1 --to=5000 --projectors=unit_ledger_accounts,fees_issued
//	projector --reset
//	projector --aggregates=<id>,<id>
//
// Configuration is read like the ledger process (CONFIG_PATH and environment).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/projections"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/config"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/di"
)

func main() {
	from := flag.Int64("from", 1, "first store position to replay")
	to := flag.Int64("to", 0, "last store position to replay, 0 for the end of the log")
	names := flag.String("projectors", "", "comma separated projector names, empty for all")
	reset := flag.Bool("reset", false, "empty the selected read models before replaying")
	aggregates := flag.String("aggregates", "", "comma separated aggregate ids to replay instead of a position range")
	flag.Parse()

	if *reset && *from > 1 {
		fmt.Fprintln(os.Stderr, "--reset only applies to a replay from the start of the log")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	logger := container.Logger
	started := time.Now()

	ctx, segment := container.Tracer.StartSegment(ctx, "projector.replay")

	var report projections.ReplayReport
	if ids := splitList(*aggregates); len(ids) > 0 {
		report, err = container.Projections.ReplayAggregates(ctx, ids...)
	} else {
		report, err = container.Projections.Replay(ctx, projections.ReplayRange{
			From:       *from,
			To:         *to,
			Projectors: splitList(*names),
			Reset:      *reset,
		})
	}
	if segment != nil {
		segment.Close(err)
	}
	if err != nil {
		logger.Error("Replay failed",
			zap.Int("events", report.Events),
			zap.Int64("lastPosition", report.LastPosition),
			zap.Error(err))
		_ = logger.Sync()
		cleanup()
		os.Exit(1)
	}

	logger.Info("Replay finished",
		zap.Int("events", report.Events),
		zap.Int("applied", report.Applied),
		zap.Int64("lastPosition", report.LastPosition),
		zap.Int64("gaps", report.Gaps),
		zap.Int64("firstGap", report.FirstGap),
		zap.Duration("duration", time.Since(started)))
	_ = logger.Sync()
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
