package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/MoneyUnify/moneyunify-go/internal/adapter/storage"
	"github.com/MoneyUnify/moneyunify-go/internal/core/notifications"
)

const (
	webhookPollInterval = 5 * time.Second
	webhookMaxAttempts  = 5
)

// StartWebhookWorker drains the webhook_jobs queue, delivering merchant
// notifications with retries and linear backoff.
func StartWebhookWorker(jobs *storage.WebhookJobRepository, secret string) {
	go func() {
		slog.Info("Webhook worker started")
		for {
			processJob(jobs, secret)
			time.Sleep(webhookPollInterval)
		}
	}()
}

func processJob(jobs *storage.WebhookJobRepository, secret string) {
	ctx := context.Background()

	job, err := jobs.NextJob(ctx)
	if err != nil {
		slog.Error("Worker: failed to fetch webhook job", "error", err)
		return
	}
	if job == nil {
		return
	}

	slog.Info("Worker: delivering webhook", "job_id", job.ID, "event", job.Event, "url", job.URL)

	if sendErr := notifications.SendWebhook(job.URL, job.Payload, secret); sendErr != nil {
		slog.Error("Worker: webhook delivery failed", "error", sendErr, "attempts", job.Attempts, "job_id", job.ID)

		if job.Attempts >= webhookMaxAttempts {
			if err := jobs.MarkFailed(ctx, job.ID); err != nil {
				slog.Error("Worker: failed to mark job FAILED", "error", err, "job_id", job.ID)
			}
			slog.Error("Worker: job abandoned, max attempts reached", "job_id", job.ID)
			return
		}

		nextRun := time.Now().Add(time.Duration(job.Attempts*10+10) * time.Second)
		if err := jobs.Reschedule(ctx, job.ID, nextRun); err != nil {
			slog.Error("Worker: failed to reschedule job", "error", err, "job_id", job.ID)
			return
		}
		slog.Info("Worker: delivery retry scheduled", "job_id", job.ID, "next_run", nextRun)
		return
	}

	if err := jobs.MarkDelivered(ctx, job.ID); err != nil {
		slog.Error("Worker: failed to mark job COMPLETED", "error", err, "job_id", job.ID)
		return
	}
	slog.Info("Worker: webhook delivered", "job_id", job.ID)
}
