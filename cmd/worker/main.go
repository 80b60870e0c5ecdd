package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/communityhub/communityhub/internal/app"
	jobmetrics "github.com/communityhub/communityhub/internal/jobs"
	"github.com/communityhub/communityhub/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := jobmetrics.NewMetrics(nil)
	mailer := jobs.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)

	inviteJob := jobs.NewInviteMailJob(mailer, logger)
	reminderJob := jobs.NewDueReminderJob(pool, mailer, logger, metrics)
	purgeJob := jobs.NewVisitorPurgeJob(pool, logger, metrics)

	reminderTask, err := jobs.NewDueReminderTask(cfg.DueReminderLeadDay)
	if err != nil {
		logger.Error("build due reminder task", slog.Any("error", err))
		os.Exit(1)
	}
	purgeTask, err := jobs.NewVisitorPurgeTask(cfg.VisitorRetention)
	if err != nil {
		logger.Error("build visitor purge task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeInviteMail, Handler: inviteJob.Handle},
			{Type: jobs.TaskDueReminder, Handler: reminderJob.Handle},
			{Type: jobs.TaskVisitorPurge, Handler: purgeJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 1 * * *", Task: reminderTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 2 * * *", Task: purgeTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
