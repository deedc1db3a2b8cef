package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"mailsift/internal/tasks"
)

// AsynqJobClient enqueues background tasks on Redis via asynq.
type AsynqJobClient struct {
	client *asynq.Client
}

var _ JobClient = (*AsynqJobClient)(nil)

func NewAsynqJobClient(redisAddr, redisPassword string, redisDB int) *AsynqJobClient {
	cli := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	return &AsynqJobClient{client: cli}
}

func (jc *AsynqJobClient) Close() error {
	return jc.client.Close()
}

func (jc *AsynqJobClient) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	info, err := jc.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task %s: %w", task.Type(), err)
	}
	log.Debugf("Enqueued task %s (id=%s, queue=%s)", task.Type(), info.ID, info.Queue)
	return info, nil
}

// EnqueueSyncSweep schedules the background classification sweep for the
// given sync job.
func (jc *AsynqJobClient) EnqueueSyncSweep(ctx context.Context, jobID uuid.UUID) error {
	task, err := tasks.NewSyncSweepTask(jobID)
	if err != nil {
		return err
	}
	_, err = jc.Enqueue(ctx, task)
	return err
}
