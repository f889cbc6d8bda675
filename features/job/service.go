package job

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"decoder/internal/config"
)

var (
	ErrPublishTimeout = errors.New("timeout waiting for NSQ publish")
	ErrNoQueue        = errors.New("queue not configured")
)

const publishTimeout = 5 * time.Second

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type Service struct {
	repo Repository
	pub  EventPublisher
}

func NewService(repo Repository, pub EventPublisher) *Service {
	return &Service{repo: repo, pub: pub}
}

func (s *Service) List(ctx context.Context) ([]Job, error) {
	return s.repo.List(ctx)
}

func (s *Service) Save(ctx context.Context, j *Job) error {
	return s.repo.Save(ctx, j)
}

// Retry puts the job's payload back on the intake topic and forgets the job.
func (s *Service) Retry(ctx context.Context, id string) error {
	if s.pub == nil {
		return ErrNoQueue
	}
	j, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- s.pub.Publish(config.TopicIntakeEmail, j.Payload)
	}()
	select {
	case err := <-done:
		if err != nil {
			return err
		}
	case <-time.After(publishTimeout):
		return ErrPublishTimeout
	case <-ctx.Done():
		return ctx.Err()
	}

	slog.InfoContext(ctx, "failed job re-queued", "job_id", id, "message_id", j.MessageID)
	return s.repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
