package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/enterprise/fraud-pipeline/configs"
	"github.com/enterprise/fraud-pipeline/internal/document"
	"github.com/enterprise/fraud-pipeline/internal/events"
	"github.com/enterprise/fraud-pipeline/internal/queue"
)

// Worker consumes DocumentEvents off the ingestion stream and runs them
// through the pipeline, publishing a DecisionEvent on success. Grounded on
// the teacher's Worker/WorkerPool shape (per-goroutine poll loop, batch
// consume, dead-letter on failure), generalized from transaction scoring to
// document decisioning. A message whose processing fails is sent to the
// dead-letter stream on that first failure and acknowledged; it is not
// retried, and WorkerConfig.RetryAttempts is not consulted.
type Worker struct {
	id           string
	pipeline     *Pipeline
	streamClient *queue.RedisStreamClient
	publisher    *events.Publisher
	config       configs.WorkerConfig
	wg           sync.WaitGroup
	stopCh       chan struct{}
	metrics      *WorkerMetrics
}

// WorkerMetrics tracks worker performance, mirroring the teacher's
// mutex-guarded metrics struct.
type WorkerMetrics struct {
	mu                sync.RWMutex
	ProcessedCount    int64
	FailedCount       int64
	TotalProcessingMs int64
	LastProcessedAt   time.Time
}

func NewWorker(id string, p *Pipeline, streamClient *queue.RedisStreamClient, publisher *events.Publisher, config configs.WorkerConfig) *Worker {
	return &Worker{
		id:           id,
		pipeline:     p,
		streamClient: streamClient,
		publisher:    publisher,
		config:       config,
		stopCh:       make(chan struct{}),
		metrics:      &WorkerMetrics{},
	}
}

func (w *Worker) Start(ctx context.Context) error {
	log.Info().Str("worker_id", w.id).Int("concurrency", w.config.Concurrency).Msg("Starting fraud pipeline worker")

	for i := 0; i < w.config.Concurrency; i++ {
		w.wg.Add(1)
		go w.processLoop(ctx, fmt.Sprintf("%s-%d", w.id, i))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("Received shutdown signal")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	return w.Stop()
}

func (w *Worker) Stop() error {
	close(w.stopCh)
	w.wg.Wait()
	return nil
}

func (w *Worker) processLoop(ctx context.Context, consumerName string) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		default:
			w.processBatch(ctx, consumerName)
		}
	}
}

func (w *Worker) processBatch(ctx context.Context, consumerName string) {
	messages, err := w.streamClient.Consume(ctx, consumerName, int64(w.config.BatchSize), w.config.PollInterval)
	if err != nil {
		log.Error().Err(err).Str("consumer", consumerName).Msg("Failed to consume messages")
		time.Sleep(time.Second)
		return
	}
	if len(messages) == 0 {
		return
	}

	for _, msg := range messages {
		if err := w.processMessage(ctx, msg); err != nil {
			log.Error().Err(err).Str("message_id", msg.ID).Str("document_id", msg.Event.DocumentID).Msg("Failed to process message")

			if derr := w.streamClient.SendToDeadLetter(ctx, msg.Event, err); derr != nil {
				log.Error().Err(derr).Msg("Failed to send to dead letter queue")
			}

			w.metrics.mu.Lock()
			w.metrics.FailedCount++
			w.metrics.mu.Unlock()
		}

		if ackErr := w.streamClient.Acknowledge(ctx, msg.ID); ackErr != nil {
			log.Error().Err(ackErr).Msg("Failed to acknowledge message")
		}
	}
}

func (w *Worker) processMessage(ctx context.Context, msg queue.StreamMessage) error {
	startTime := time.Now()

	var doc document.Document
	doc.Kind = document.Kind(msg.Event.Kind)
	if err := decodeDocument(doc.Kind, msg.Event.DocumentRaw, &doc); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}

	result, err := w.pipeline.Run(ctx, msg.Event.DocumentID, doc, document.RawText(msg.Event.RawText), msg.Event.SubmittedAt, time.Now())
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	if w.publisher != nil {
		identityKey, _ := doc.IdentityKey()
		evt := events.DecisionEvent{
			DocumentID:  msg.Event.DocumentID,
			IdentityKey: identityKey,
			Decision:    result.Record.Decision,
			Source:      result.Record.Source,
			Score:       result.Record.MLAnalysis.FraudRiskScore,
			Timestamp:   time.Now(),
		}
		if err := w.publisher.Publish(evt); err != nil {
			log.Warn().Err(err).Str("document_id", msg.Event.DocumentID).Msg("Failed to publish decision event")
		}
	}

	processingTime := time.Since(startTime)
	w.metrics.mu.Lock()
	w.metrics.ProcessedCount++
	w.metrics.TotalProcessingMs += processingTime.Milliseconds()
	w.metrics.LastProcessedAt = time.Now()
	w.metrics.mu.Unlock()

	return nil
}

func decodeDocument(kind document.Kind, raw json.RawMessage, doc *document.Document) error {
	switch kind {
	case document.KindBankStatement:
		doc.BankStatement = &document.BankStatement{}
		return json.Unmarshal(raw, doc.BankStatement)
	case document.KindCheck:
		doc.Check = &document.Check{}
		return json.Unmarshal(raw, doc.Check)
	case document.KindPaystub:
		doc.Paystub = &document.Paystub{}
		return json.Unmarshal(raw, doc.Paystub)
	case document.KindMoneyOrder:
		doc.MoneyOrder = &document.MoneyOrder{}
		return json.Unmarshal(raw, doc.MoneyOrder)
	default:
		return fmt.Errorf("unknown document kind %q", kind)
	}
}

func (w *Worker) GetMetrics() WorkerMetrics {
	w.metrics.mu.RLock()
	defer w.metrics.mu.RUnlock()
	return WorkerMetrics{
		ProcessedCount:    w.metrics.ProcessedCount,
		FailedCount:       w.metrics.FailedCount,
		TotalProcessingMs: w.metrics.TotalProcessingMs,
		LastProcessedAt:   w.metrics.LastProcessedAt,
	}
}

// WorkerPool manages multiple Workers, mirroring the teacher's WorkerPool.
type WorkerPool struct {
	workers []*Worker
	wg      sync.WaitGroup
}

func NewWorkerPool(numWorkers int, p *Pipeline, streamClient *queue.RedisStreamClient, publisher *events.Publisher, config configs.WorkerConfig) *WorkerPool {
	pool := &WorkerPool{workers: make([]*Worker, numWorkers)}
	for i := 0; i < numWorkers; i++ {
		pool.workers[i] = NewWorker(fmt.Sprintf("worker-%d", i), p, streamClient, publisher, config)
	}
	return pool
}

func (p *WorkerPool) Start(ctx context.Context) error {
	log.Info().Int("num_workers", len(p.workers)).Msg("Starting worker pool")

	errCh := make(chan error, len(p.workers))
	for _, worker := range p.workers {
		w := worker
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			if err := w.Start(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *WorkerPool) Stop() error {
	for _, worker := range p.workers {
		if err := worker.Stop(); err != nil {
			log.Error().Err(err).Str("worker_id", worker.id).Msg("Failed to stop worker")
		}
	}
	p.wg.Wait()
	return nil
}
