package services

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/stackroom/backend/internal/config"
	"github.com/stackroom/backend/pkg/logger"
)

const (
	TaskTypeThumbnail = "image:thumbnail"
)

// ThumbnailTask asks the worker to render a thumbnail for an uploaded image.
type ThumbnailTask struct {
	ImageID  uint   `json:"image_id"`
	FilePath string `json:"file_path"`
}

// TaskQueue delivers thumbnail jobs to a processor, either through Redis
// (asynq) or inline when Redis is disabled.
type TaskQueue interface {
	Enqueue(task *ThumbnailTask) error
	IsAsync() bool
	Close() error
}

// NewTaskQueue picks the queue implementation from config. When Redis is
// enabled but unreachable it falls back to the sync queue rather than
// failing startup.
func NewTaskQueue(cfg *config.RedisConfig) TaskQueue {
	if cfg.Enabled {
		queue, err := NewAsyncQueue(cfg)
		if err != nil {
			logger.Infof("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
			return NewSyncQueue()
		}
		logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Addr)
		return queue
	}
	logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
	return NewSyncQueue()
}

// AsyncQueue implements TaskQueue on asynq (Redis-based).
type AsyncQueue struct {
	client *asynq.Client
}

func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async mode.
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()
	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

func (q *AsyncQueue) Enqueue(task *ThumbnailTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeThumbnail, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("[AsyncQueue] Task enqueued: id=%s, queue=%s", info.ID, info.Queue)
	return nil
}

func (q *AsyncQueue) IsAsync() bool {
	return true
}

func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue implements TaskQueue with in-process execution (no Redis).
type SyncQueue struct {
	processor func(context.Context, *ThumbnailTask) error
}

func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function that handles enqueued tasks.
func (q *SyncQueue) SetProcessor(processor func(context.Context, *ThumbnailTask) error) {
	q.processor = processor
}

// Enqueue runs the task in a goroutine so uploads return immediately.
func (q *SyncQueue) Enqueue(task *ThumbnailTask) error {
	if q.processor == nil {
		logger.Infof("[SyncQueue] Warning: no processor set, task will be dropped")
		return nil
	}

	go func() {
		if err := q.processor(context.Background(), task); err != nil {
			logger.Infof("[SyncQueue] Task processing failed: %v", err)
		}
	}()

	return nil
}

func (q *SyncQueue) IsAsync() bool {
	return false
}

func (q *SyncQueue) Close() error {
	return nil
}
