package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nilepay-solutions/ms-go-manual-payments/app/service"
	"github.com/nilepay-solutions/ms-go-manual-payments/config"
)

var (
	workerMode bool
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Run status notification related commands",
}

var notifyDispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Dispatch pending status callbacks to caller services",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"notify_dispatch",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.NotifyDispatchInterval },
			func(s *service.SessionService, ctx context.Context) error {
				_, err := s.RunDispatchNotificationsBatch(ctx)
				return err
			},
		)
	},
}

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Run expiration-related commands",
}

var expirePendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Mark long-running pending payment sessions as expired",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"expire_pending",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.ExpirePendingInterval },
			func(s *service.SessionService, ctx context.Context) error {
				_, err := s.RunExpirePendingBatch(ctx)
				return err
			},
		)
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(expireCmd)
	notifyCmd.AddCommand(notifyDispatchCmd)
	expireCmd.AddCommand(expirePendingCmd)

	rootCmd.PersistentFlags().BoolVar(&workerMode, "worker", false, "Run continuously using configured interval")
}

func runCommand(
	name string,
	intervalResolver func(cfg *config.Config) time.Duration,
	fn func(s *service.SessionService, ctx context.Context) error,
) {
	cfg, sessionService, _, cleanup := mustCreateSessionService()
	defer cleanup()

	if workerMode {
		runWorker(name, intervalResolver(cfg), sessionService, fn)
		return
	}

	ctx := context.Background()
	runJob(name, func() error { return fn(sessionService, ctx) })
}

func runWorker(
	name string,
	interval time.Duration,
	sessionService *service.SessionService,
	fn func(s *service.SessionService, ctx context.Context) error,
) {
	if interval <= 0 {
		logrus.WithField("job", name).Fatal("invalid worker interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runJob(name, func() error { return fn(sessionService, ctx) })

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-quit:
			logrus.WithField("job", name).Info("Worker shutdown requested")
			return
		case <-ticker.C:
			runJob(name, func() error { return fn(sessionService, ctx) })
		}
	}
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
}
