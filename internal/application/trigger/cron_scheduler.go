// Package trigger schedules workflow executions from cron specs.
package trigger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	appengine "github.com/dagflow-io/dagflow/internal/application/engine"
	"github.com/dagflow-io/dagflow/internal/infrastructure/logger"
)

// CronTrigger describes one scheduled submission.
type CronTrigger struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflow_id"`
	Spec       string         `json:"spec"`
	Input      map[string]any `json:"input,omitempty"`
	UseCache   bool           `json:"use_cache"`
}

// CronScheduler submits executions on cron schedules.
type CronScheduler struct {
	manager *appengine.ExecutionManager
	logger  *logger.Logger

	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// NewCronScheduler creates a new cron scheduler. Schedules run in UTC.
func NewCronScheduler(manager *appengine.ExecutionManager, log *logger.Logger) *CronScheduler {
	if log == nil {
		log = logger.Default()
	}

	return &CronScheduler{
		manager: manager,
		logger:  log,
		cron:    cron.New(cron.WithLocation(time.UTC)),
		entries: make(map[string]cron.EntryID),
	}
}

// Start starts the scheduler.
func (cs *CronScheduler) Start() {
	cs.cron.Start()
}

// Stop stops the scheduler, waiting for in-flight jobs.
func (cs *CronScheduler) Stop() {
	ctx := cs.cron.Stop()
	<-ctx.Done()
}

// Add registers a trigger and returns its id.
func (cs *CronScheduler) Add(trigger CronTrigger) (string, error) {
	if trigger.ID == "" {
		trigger.ID = uuid.New().String()
	}

	t := trigger
	entryID, err := cs.cron.AddFunc(t.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		executionID, err := cs.manager.Submit(ctx, t.WorkflowID, t.Input, appengine.SubmitOptions{
			UseCache: t.UseCache,
		})
		if err != nil {
			cs.logger.Error("scheduled submission failed",
				"trigger_id", t.ID, "workflow_id", t.WorkflowID, "error", err)
			return
		}

		cs.logger.Info("scheduled execution submitted",
			"trigger_id", t.ID, "workflow_id", t.WorkflowID, "execution_id", executionID)
	})
	if err != nil {
		return "", err
	}

	cs.mu.Lock()
	cs.entries[t.ID] = entryID
	cs.mu.Unlock()

	return t.ID, nil
}

// Remove unregisters a trigger.
func (cs *CronScheduler) Remove(triggerID string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if entryID, ok := cs.entries[triggerID]; ok {
		cs.cron.Remove(entryID)
		delete(cs.entries, triggerID)
	}
}

// Count returns the number of registered triggers.
func (cs *CronScheduler) Count() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.entries)
}
