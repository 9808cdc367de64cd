package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/xtractpay/xtractpay/internal"
	"github.com/xtractpay/xtractpay/internal/bill"
)

// SummaryJob is one expense summary awaiting delivery
type SummaryJob struct {
	Recipient  string  `json:"recipient"`
	DocID      string  `json:"doc_id"`
	EmployeeID string  `json:"employee_id"`
	Vendor     string  `json:"vendor"`
	Amount     float64 `json:"amount"`
	Category   string  `json:"category"`
	Status     string  `json:"status"`
}

type Worker struct {
	ID         int
	WorkerPool chan chan SummaryJob
	JobChannel chan SummaryJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan SummaryJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan SummaryJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(SummaryJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker delivering summary", "worker_id", w.ID, "doc_id", job.DocID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// Client delivers expense summaries to the email endpoint through a
// bounded worker pool. Delivery is best effort: a full queue drops the
// job and a failed send is logged and forgotten.
type Client struct {
	endpointURL string
	recipient   string
	timeout     time.Duration
	logger      *slog.Logger

	jobQueue   chan SummaryJob
	workerPool chan chan SummaryJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

type Config struct {
	EndpointURL    string
	Recipient      string
	Timeout        time.Duration
	MaxWorkers     int
	JobQueueSize   int
	WorkerPoolSize int
}

func NewClient(config Config, logger *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	workerPoolSize := config.WorkerPoolSize
	if workerPoolSize <= 0 {
		workerPoolSize = maxWorkers
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		endpointURL: config.EndpointURL,
		recipient:   config.Recipient,
		timeout:     timeout,
		logger:      logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan SummaryJob, jobQueueSize),
		workerPool: make(chan chan SummaryJob, workerPoolSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	client.startWorkerPool()

	return client
}

func (c *Client) startWorkerPool() {
	c.once.Do(func() {
		for i := 0; i < c.maxWorkers; i++ {
			worker := NewWorker(i, c.workerPool, c.logger)
			worker.Start(c.ctx, &c.wg, c.deliverSummary)
		}

		go c.dispatch()

		c.logger.Info("notification worker pool started",
			"max_workers", c.maxWorkers,
			"queue_size", cap(c.jobQueue))
	})
}

func (c *Client) dispatch() {
	c.wg.Add(1)
	defer c.wg.Done()

	for {
		select {
		case job := <-c.jobQueue:
			select {
			case jobChannel := <-c.workerPool:
				select {
				case jobChannel <- job:
				case <-c.ctx.Done():
					c.logger.Info("dispatcher shutting down")
					return
				}
			case <-c.ctx.Done():
				c.logger.Info("dispatcher shutting down")
				return
			}
		case <-c.ctx.Done():
			c.logger.Info("dispatcher shutting down")
			return
		}
	}
}

func (c *Client) Shutdown() {
	c.logger.Info("shutting down notification client")
	c.cancel()
	c.wg.Wait()
	c.logger.Info("notification client shutdown complete")
}

// EnqueueSummary implements bill.Notifier. It never blocks the
// submission path: when the queue is full the summary is dropped.
func (c *Client) EnqueueSummary(b *bill.Bill) {
	job := SummaryJob{
		Recipient:  c.recipient,
		DocID:      b.ID,
		EmployeeID: b.EmployeeID,
		Vendor:     b.Vendor,
		Amount:     b.Amount,
		Category:   b.Category,
		Status:     b.Status,
	}

	select {
	case c.jobQueue <- job:
		c.logger.Debug("summary queued", "doc_id", b.ID)
	default:
		c.logger.Warn("notification queue full, dropping summary", "doc_id", b.ID)
	}
}

func (c *Client) deliverSummary(job SummaryJob) {
	body, err := json.Marshal(job)
	if err != nil {
		c.logger.Error("failed to encode summary", "error", err, "doc_id", job.DocID)
		return
	}

	ctx, cancel := internal.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("failed to build summary request", "error", err, "doc_id", job.DocID)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.logger.Warn("summary delivery failed", "error", err, "doc_id", job.DocID)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("summary delivery rejected",
			"status", resp.StatusCode,
			"doc_id", job.DocID)
		return
	}

	c.logger.Info("summary delivered", "doc_id", job.DocID, "recipient", job.Recipient)
}
