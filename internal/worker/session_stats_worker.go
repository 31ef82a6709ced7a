package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examforge/examforge-backend/internal/config"
	"github.com/examforge/examforge-backend/internal/repository"
	"github.com/examforge/examforge-backend/internal/service"
)

const (
	StatsBatchSize    = 50
	StatsBatchTimeout = 2 * time.Second
	StatsPollTimeout  = 1 * time.Second
)

// SessionStatsWorker drains queued counter increments and applies them to
// exam_sessions in batches. The counters are display data for invigilator
// dashboards, so eventual consistency is acceptable; correctness of papers
// and results never depends on them.
type SessionStatsWorker struct {
	sessionRepo *repository.ExamSessionRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

func NewSessionStatsWorker(sessionRepo *repository.ExamSessionRepository, rdb *redis.Client, log zerolog.Logger) *SessionStatsWorker {
	return &SessionStatsWorker{
		sessionRepo: sessionRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "session_stats_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *SessionStatsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SessionStatsWorker started")

	batch := make([]*service.SessionStatsTask, 0, StatsBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= StatsBatchSize || time.Since(lastFlush) >= StatsBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, StatsPollTimeout, config.WorkerKey.SessionStatsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var task service.SessionStatsTask
			if err := json.Unmarshal([]byte(item[1]), &task); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &task)
		}
	}
}

// ----------------------------------------------------------------
// Batch update wrapper with per-task fallback
// ----------------------------------------------------------------

func (w *SessionStatsWorker) flushSafe(ctx context.Context, batch []*service.SessionStatsTask) {
	if len(batch) == 0 {
		return
	}

	deltas := coalesce(batch)
	if err := w.sessionRepo.ApplyCounterDeltas(ctx, deltas); err != nil {
		w.log.Warn().Err(err).Msg("Bulk counter update failed, using fallback")

		for _, d := range deltas {
			if err := w.sessionRepo.ApplyCounterDelta(ctx, d); err != nil {
				w.log.Error().Err(err).Msg("Single counter update failed — requeueing")
				raw, _ := json.Marshal(service.SessionStatsTask{
					SessionID: d.SessionID,
					Started:   d.StartedDelta,
					Submitted: d.SubmittedDelta,
				})
				w.rdb.RPush(ctx, config.WorkerKey.SessionStatsQueue, raw)
			}
		}
	}
}

// coalesce merges tasks for the same session into one delta so the batch
// issues at most one row update per session.
func coalesce(batch []*service.SessionStatsTask) []repository.CounterDelta {
	index := make(map[string]int, len(batch))
	deltas := make([]repository.CounterDelta, 0, len(batch))

	for _, task := range batch {
		key := task.SessionID.String()
		if i, ok := index[key]; ok {
			deltas[i].StartedDelta += task.Started
			deltas[i].SubmittedDelta += task.Submitted
			continue
		}
		index[key] = len(deltas)
		deltas = append(deltas, repository.CounterDelta{
			SessionID:      task.SessionID,
			StartedDelta:   task.Started,
			SubmittedDelta: task.Submitted,
		})
	}
	return deltas
}
