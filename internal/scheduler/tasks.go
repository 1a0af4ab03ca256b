package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSlotReminder = "planning.slot.reminder"

const TaskNotificationOutboxDue = "notification.outbox.due"

type SlotReminderPayload struct {
	SlotID         string `json:"slotId"`
	TeamID         string `json:"teamId"`
	InterventionID string `json:"interventionId"`
}

type NotificationOutboxDuePayload struct {
	OutboxID string `json:"outboxId"`
	TeamID   string `json:"teamId"`
}

func NewSlotReminderTask(payload SlotReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSlotReminder, data), nil
}

func ParseSlotReminderPayload(task *asynq.Task) (SlotReminderPayload, error) {
	var payload SlotReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SlotReminderPayload{}, err
	}
	return payload, nil
}

func NewNotificationOutboxDueTask(payload NotificationOutboxDuePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationOutboxDue, data), nil
}

func ParseNotificationOutboxDuePayload(task *asynq.Task) (NotificationOutboxDuePayload, error) {
	var payload NotificationOutboxDuePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return NotificationOutboxDuePayload{}, err
	}
	return payload, nil
}
