package habit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/redis/go-redis/v9"

	"github.com/ecohabit/ecohabit/internal/events"
	"github.com/ecohabit/ecohabit/internal/models"
	"github.com/ecohabit/ecohabit/internal/session"
	"github.com/ecohabit/ecohabit/internal/store"
)

// Notifier produces a short encouragement string for a completed habit.
type Notifier interface {
	Generate(ctx context.Context, habitName string) (string, error)
}

// Outcome is the result of a completion attempt. AlreadyCompleted marks the
// benign duplicate case; it is never an error.
type Outcome struct {
	Completion       models.Completion `json:"completion"`
	AlreadyCompleted bool              `json:"already_completed"`
	Dashboard        models.Dashboard  `json:"dashboard"`
}

// Engine enforces the at-most-one-completion-per-habit-per-day rule and keeps
// the derived dashboard figures fresh. The database's uniqueness constraint
// remains the concurrency authority; the engine's pre-check only makes the
// common repeat-submission case cheap.
type Engine struct {
	store    *store.Store
	redis    *redis.Client
	notifier Notifier
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger

	notifyTimeout time.Duration
	motivationTTL time.Duration

	// now is swapped out in tests.
	now func() time.Time

	wg sync.WaitGroup
}

func NewEngine(st *store.Store, rdb *redis.Client, notifier Notifier, producer sarama.SyncProducer, topic string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:         st,
		redis:         rdb,
		notifier:      notifier,
		producer:      producer,
		topic:         topic,
		logger:        logger,
		notifyTimeout: 5 * time.Second,
		motivationTTL: 5 * time.Minute,
		now:           time.Now,
	}
}

// CompleteHabit marks the habit done for today in the session user's time
// zone. Repeated calls within the same calendar day are idempotent. The
// completion insert is the durable fact; streak recomputation, the motivation
// notifier and the event publication are all best-effort afterthoughts that
// never undo it.
func (e *Engine) CompleteHabit(ctx context.Context, sess session.Session, habitID string) (Outcome, error) {
	habit, err := e.store.GetHabit(ctx, sess.UserID, habitID)
	if err != nil {
		return Outcome{}, err
	}

	now := e.now()
	today := DayOf(now, sess.Zone())

	prior, err := e.store.ListHabitCompletions(ctx, sess.UserID, habitID)
	if err != nil {
		return Outcome{}, err
	}
	for _, c := range prior {
		if c.CompletedOn == today {
			return Outcome{Completion: c, AlreadyCompleted: true, Dashboard: e.refresh(ctx, sess)}, nil
		}
	}

	completion, err := e.store.InsertCompletion(ctx, sess.UserID, habitID, now, today)
	if errors.Is(err, store.ErrConflict) {
		// Lost a race with a concurrent submission; the store's uniqueness
		// constraint is the authority and the duplicate stays benign.
		return Outcome{AlreadyCompleted: true, Dashboard: e.refresh(ctx, sess)}, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	dashboard := e.refresh(ctx, sess)

	e.wg.Add(2)
	go e.notify(habit)
	go e.publish(habit, completion)

	return Outcome{Completion: completion, Dashboard: dashboard}, nil
}

// refresh recomputes the dashboard after a write. A failure here is logged
// and swallowed: the figures reconcile lazily on the next read.
func (e *Engine) refresh(ctx context.Context, sess session.Session) models.Dashboard {
	dashboard, err := e.Dashboard(ctx, sess)
	if err != nil {
		e.logger.Warn("dashboard refresh failed, figures reconcile on next read", "user_id", sess.UserID, "error", err)
		return models.Dashboard{}
	}
	return dashboard
}

// notify asks the external text generator for an encouragement line and parks
// it in Redis as a transient notification. Runs detached from the request
// with its own timeout; every failure is swallowed.
func (e *Engine) notify(habit models.Habit) {
	defer e.wg.Done()
	if e.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.notifyTimeout)
	defer cancel()

	text, err := e.notifier.Generate(ctx, habit.Name)
	if err != nil {
		e.logger.Debug("motivation generation failed", "habit", habit.Name, "error", err)
		return
	}
	if e.redis == nil {
		return
	}
	key := motivationKey(habit.OwnerID)
	if err := e.redis.Set(ctx, key, text, e.motivationTTL).Err(); err != nil {
		e.logger.Debug("failed to store motivation", "key", key, "error", err)
	}
}

// publish emits the completion event to Kafka. Best-effort, never surfaced.
func (e *Engine) publish(habit models.Habit, completion models.Completion) {
	defer e.wg.Done()
	if e.producer == nil {
		return
	}

	event := events.Completion{
		UserID:       completion.OwnerID,
		HabitID:      habit.ID,
		CompletionID: completion.ID,
		HabitName:    habit.Name,
		Category:     habit.Category,
		CompletedOn:  completion.CompletedOn,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		e.logger.Warn("failed to marshal completion event", "error", err)
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: e.topic,
		Key:   sarama.StringEncoder(completion.OwnerID),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := e.producer.SendMessage(msg); err != nil {
		e.logger.Warn("completion event publish failed", "error", err)
	}
}

// Motivation pops the pending transient notification for the user, if any.
func (e *Engine) Motivation(ctx context.Context, userID string) (string, bool) {
	if e.redis == nil {
		return "", false
	}
	text, err := e.redis.GetDel(ctx, motivationKey(userID)).Result()
	if err != nil || text == "" {
		return "", false
	}
	return text, true
}

// Wait blocks until in-flight notifier and event goroutines finish. Used on
// shutdown and in tests.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func motivationKey(userID string) string {
	return fmt.Sprintf("motivation:%s", userID)
}

func streakKey(userID string) string {
	return fmt.Sprintf("streak:%s", userID)
}
