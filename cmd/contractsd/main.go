package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/contracts-checker/internal/app"
	"github.com/joseph-ayodele/contracts-checker/internal/async"
	"github.com/joseph-ayodele/contracts-checker/internal/common"
	"github.com/joseph-ayodele/contracts-checker/internal/ingest"
	"github.com/joseph-ayodele/contracts-checker/internal/pipeline"
	"github.com/joseph-ayodele/contracts-checker/internal/server"
)

func main() {
	var (
		watchDir = flag.String("watch", "", "inbox directory to check new documents from (optional)")
		debug    = flag.Bool("debug", false, "attach per-rule traces and log at debug level")
	)
	flag.Parse()

	logger := app.NewLogger(*debug)
	cfg := common.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc, reg, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	svc := server.NewComplianceService(proc, reg, logger,
		server.WithMaxDocumentMB(cfg.Server.MaxDocumentMB),
		server.WithRequestTimeout(cfg.Server.RequestTimeout),
		server.WithDebugTraces(*debug),
	)
	grpcServer, hs := server.NewGRPCServer(svc, logger)

	var queue *async.ProcessorQueue
	if *watchDir != "" {
		queue = startInbox(ctx, *watchDir, proc, cfg.Batch, *debug, logger)
	}

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	logger.Info("gRPC serving", "addr", lis.Addr().String(), "forms", len(reg))

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	grpcServer.GracefulStop()
	if queue != nil {
		drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		queue.Shutdown(drainCtx)
		cancel()
	}
	logger.Info("stopped")
}

// startInbox checks every contract that lands in dir and logs its issues.
func startInbox(ctx context.Context, dir string, proc *pipeline.Processor, cfg common.BatchConfig, debug bool, logger *slog.Logger) *async.ProcessorQueue {
	q := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(cfg.Workers),
		async.WithQueueSize(cfg.QueueSize),
		async.WithProcessTimeout(cfg.ProcessTimeout),
		async.WithPipelineOptions(pipeline.Options{Debug: debug}),
		async.WithResultHandler(func(r async.Result) {
			if r.Err != nil {
				logger.Error("inbox.failed", "path", r.Job.Path, "error", r.Err)
				return
			}
			ids := make([]string, 0, len(r.Report.Issues))
			for _, is := range r.Report.Issues {
				ids = append(ids, is.ID)
			}
			logger.Info("inbox.checked", "path", r.Job.Path, "issues", ids, "duration_ms", r.Duration.Milliseconds())
		}),
	)

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to watch inbox", "dir", dir, "error", err)
		os.Exit(1)
	}
	logger.Info("watching inbox", "dir", dir)

	go func() {
		for {
			select {
			case path, ok := <-events:
				if !ok {
					return
				}
				sum, _, err := ingest.HashFile(path)
				if err != nil {
					logger.Warn("inbox.unreadable", "path", path, "error", err)
					continue
				}
				if err := q.Enqueue(ctx, async.Job{DocumentID: sum, Path: path}); err != nil {
					logger.Warn("inbox.enqueue_failed", "path", path, "error", err)
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				logger.Warn("inbox.watch_error", "error", err)
			}
		}
	}()
	return q
}
