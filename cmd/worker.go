package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xtractpay/xtractpay/internal/notification"
	"github.com/xtractpay/xtractpay/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker pools for various services",
	Long:  `Start and manage worker pools for background services like summary notifications.`,
}

var notificationWorkerCmd = &cobra.Command{
	Use:   "notification",
	Short: "Start notification worker pool",
	Long:  `Start the worker pool that delivers expense summary notifications`,
	Run: func(cmd *cobra.Command, args []string) {
		startNotificationWorker()
	},
}

var (
	maxWorkers   int
	jobQueueSize int
	endpointURL  string
	recipient    string
)

func startNotificationWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.LoggerWrapper()

	notifConfig := notification.Config{
		EndpointURL:  getStringFlag(endpointURL, config.Notification.EndpointURL),
		Recipient:    getStringFlag(recipient, config.Notification.Recipient),
		Timeout:      config.Notification.Timeout,
		MaxWorkers:   getIntFlag(maxWorkers, config.Notification.MaxWorkers),
		JobQueueSize: getIntFlag(jobQueueSize, config.Notification.JobQueueSize),
	}

	log.Info("starting notification worker",
		"max_workers", notifConfig.MaxWorkers,
		"job_queue_size", notifConfig.JobQueueSize,
		"endpoint_url", notifConfig.EndpointURL)

	client := notification.NewClient(notifConfig, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("notification worker is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	log.Info("received signal, shutting down notification worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		client.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		log.Info("notification worker pool shutdown complete")
	case <-ctx.Done():
		log.Warn("shutdown timeout reached, forcing exit")
	}
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	notificationWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	notificationWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	notificationWorkerCmd.Flags().StringVar(&endpointURL, "endpoint-url", "", "Notification endpoint URL (overrides config)")
	notificationWorkerCmd.Flags().StringVar(&recipient, "recipient", "", "Summary recipient address (overrides config)")

	workerCmd.AddCommand(notificationWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
