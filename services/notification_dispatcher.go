package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"streakzillaAPI/internal/logger"
	"streakzillaAPI/internal/notification"
)

type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

const (
	dispatchWorkers   = 5
	dispatchQueueSize = 100
	enqueueTimeout    = 5 * time.Second
	sendTimeout       = 10 * time.Second
)

// NotificationDispatcher sends pushes from a fixed pool of workers.
type NotificationDispatcher struct {
	pushProvider PushProvider
	workers      int
	jobQueue     chan *DispatchJob
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

type DispatchJob struct {
	Notification *notification.Notification
	Devices      []notification.DeviceToken
}

func NewNotificationDispatcher(provider PushProvider) *NotificationDispatcher {
	d := &NotificationDispatcher{
		pushProvider: provider,
		workers:      dispatchWorkers,
		jobQueue:     make(chan *DispatchJob, dispatchQueueSize),
		stopChan:     make(chan struct{}),
	}
	d.startWorkers()
	return d
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(job *DispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	notif := job.Notification
	if len(job.Devices) == 0 || d.pushProvider == nil {
		logger.Log.Debug("skipping push",
			zap.Stringer("user_id", notif.UserID),
			zap.Int("devices", len(job.Devices)),
			zap.Bool("provider_set", d.pushProvider != nil),
		)
		return
	}

	if err := d.pushProvider.SendPush(ctx, job.Devices, notif.Title, notif.Body, notif.Data); err != nil {
		logger.Log.Warn("push failed",
			zap.Stringer("user_id", notif.UserID),
			zap.String("type", string(notif.Type)),
			zap.Error(err),
		)
	}
}

// DispatchNotification queues a job. It gives up when the queue stays full
// for five seconds or ctx ends first.
func (d *NotificationDispatcher) DispatchNotification(ctx context.Context, job *DispatchJob) bool {
	select {
	case <-d.stopChan:
		return false
	default:
	}

	timer := time.NewTimer(enqueueTimeout)
	defer timer.Stop()

	select {
	case d.jobQueue <- job:
		return true
	case <-ctx.Done():
	case <-timer.C:
	case <-d.stopChan:
	}
	logger.Log.Warn("notification dropped: queue full",
		zap.Stringer("notification_id", job.Notification.ID),
	)
	return false
}

// Stop waits for in-flight sends. Queued jobs that were not picked up are dropped.
func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		logger.Log.Info("stopping notification dispatcher")
		close(d.stopChan)
		d.wg.Wait()
	})
}

// LogPushProvider stands in for FCM when no credentials are configured.
type LogPushProvider struct{}

func (LogPushProvider) SendPush(_ context.Context, tokens []notification.DeviceToken, title, body string, _ map[string]any) error {
	logger.Log.Info("push (log only)",
		zap.Int("devices", len(tokens)),
		zap.String("title", title),
		zap.String("body", body),
	)
	return nil
}
