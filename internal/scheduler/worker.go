package scheduler

import (
	"context"
	"fmt"

	"github.com/aumugisha-umu/seido-sub017/internal/events"
	planningrepo "github.com/aumugisha-umu/seido-sub017/internal/planning/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/planning/transport"
	"github.com/aumugisha-umu/seido-sub017/platform/config"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	slots  *planningrepo.Repository
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		slots:  planningrepo.New(pool),
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskSlotReminder, w.handleSlotReminder)
	mux.HandleFunc(TaskNotificationOutboxDue, w.handleNotificationOutboxDue)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleSlotReminder publishes the reminder event if the slot is still the
// selected one. A slot rescheduled or rejected after the task was enqueued is
// silently dropped.
func (w *Worker) handleSlotReminder(ctx context.Context, task *asynq.Task) error {
	if w.bus == nil {
		return nil
	}

	payload, err := ParseSlotReminderPayload(task)
	if err != nil {
		return err
	}

	slotID, err := uuid.Parse(payload.SlotID)
	if err != nil {
		return err
	}

	teamID, err := uuid.Parse(payload.TeamID)
	if err != nil {
		return err
	}

	slot, err := w.slots.GetSlot(ctx, teamID, slotID)
	if err != nil {
		return err
	}

	if slot.Status != string(transport.SlotStatusSelectionnee) {
		w.log.Debug("slot no longer selected, skipping reminder", "slotId", slotID, "status", slot.Status)
		return nil
	}

	w.bus.Publish(ctx, events.TimeSlotReminderDue{
		BaseEvent:      events.NewBaseEvent(),
		SlotID:         slot.ID,
		TeamID:         slot.TeamID,
		InterventionID: slot.InterventionID,
		StartsAt:       slot.StartsAt,
		EndsAt:         slot.EndsAt,
	})
	return nil
}

func (w *Worker) handleNotificationOutboxDue(ctx context.Context, task *asynq.Task) error {
	if w.bus == nil {
		return nil
	}

	payload, err := ParseNotificationOutboxDuePayload(task)
	if err != nil {
		return err
	}

	outboxID, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return err
	}

	teamID, err := uuid.Parse(payload.TeamID)
	if err != nil {
		return err
	}

	return w.bus.PublishSync(ctx, events.NotificationOutboxDue{
		BaseEvent: events.NewBaseEvent(),
		OutboxID:  outboxID,
		TeamID:    teamID,
	})
}
