package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return "seido" }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestRedisClientOptParsesURL(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2", false)
	if err != nil {
		t.Fatalf("redisClientOpt returned error: %v", err)
	}
	if opt.Addr != "localhost:6380" {
		t.Fatalf("addr = %q, want localhost:6380", opt.Addr)
	}
	if opt.Password != "secret" {
		t.Fatalf("password = %q, want secret", opt.Password)
	}
	if opt.DB != 2 {
		t.Fatalf("db = %d, want 2", opt.DB)
	}
	if opt.TLSConfig != nil {
		t.Fatal("expected no TLS config for redis scheme")
	}
}

func TestRedisClientOptInsecureTLS(t *testing.T) {
	opt, err := redisClientOpt("rediss://localhost:6380", true)
	if err != nil {
		t.Fatalf("redisClientOpt returned error: %v", err)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected insecure TLS config")
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error for missing redis url")
	}
}

func TestScheduleSlotReminderEnqueues(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + srv.Addr()})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	defer client.Close()

	err = client.ScheduleSlotReminder(context.Background(),
		uuid.New(), uuid.New(), uuid.New(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("ScheduleSlotReminder returned error: %v", err)
	}

	if len(srv.Keys()) == 0 {
		t.Fatal("expected the task to be written to redis")
	}
}

func TestSlotReminderPayloadRoundTrip(t *testing.T) {
	payload := SlotReminderPayload{
		SlotID:         uuid.New().String(),
		TeamID:         uuid.New().String(),
		InterventionID: uuid.New().String(),
	}

	task, err := NewSlotReminderTask(payload)
	if err != nil {
		t.Fatalf("NewSlotReminderTask returned error: %v", err)
	}
	if task.Type() != TaskSlotReminder {
		t.Fatalf("task type = %q, want %q", task.Type(), TaskSlotReminder)
	}

	parsed, err := ParseSlotReminderPayload(task)
	if err != nil {
		t.Fatalf("ParseSlotReminderPayload returned error: %v", err)
	}
	if parsed != payload {
		t.Fatalf("parsed payload %+v, want %+v", parsed, payload)
	}
}
