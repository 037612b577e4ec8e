package scheduler

import (
	"context"
	"fmt"
	"time"

	"crm_backend/platform/config"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// SLAChecker records a breach if the lead still sits in the stage. The leads
// service satisfies it.
type SLAChecker interface {
	RecordSLABreach(ctx context.Context, companyID, leadID, stageID uuid.UUID, stageChangedAt time.Time) (bool, error)
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	checker SLAChecker
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, checker SLAChecker, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(checker, log)
	w.server = server
	return w, nil
}

func newWorker(checker SLAChecker, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{mux: mux, checker: checker, log: log}
	mux.HandleFunc(TaskStageSLACheck, w.handleStageSLACheck)
	return w
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("scheduler worker stopped: %w", err)
	}
	return nil
}

func (w *Worker) handleStageSLACheck(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseStageSLACheckPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return fmt.Errorf("lead id: %v: %w", err, asynq.SkipRetry)
	}
	companyID, err := uuid.Parse(payload.CompanyID)
	if err != nil {
		return fmt.Errorf("company id: %v: %w", err, asynq.SkipRetry)
	}
	stageID, err := uuid.Parse(payload.StageID)
	if err != nil {
		return fmt.Errorf("stage id: %v: %w", err, asynq.SkipRetry)
	}

	breached, err := w.checker.RecordSLABreach(ctx, companyID, leadID, stageID, payload.StageChangedAt)
	if err != nil {
		return err
	}
	if !breached {
		w.log.Debug("sla check skipped, lead moved on", "leadId", leadID, "stageId", stageID)
	}
	return nil
}
