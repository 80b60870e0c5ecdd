package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/communityhub/communityhub/internal/jobs"
)

const (
	// TaskDueReminder triggers the daily maintenance due reminder sweep.
	TaskDueReminder = "maintenance:remind_due"
)

// DueReminderPayload carries scheduling metadata.
type DueReminderPayload struct {
	LeadDays int `json:"lead_days"`
}

// NewDueReminderTask constructs an Asynq task for the reminder sweep.
func NewDueReminderTask(leadDays int) (*asynq.Task, error) {
	body, err := json.Marshal(DueReminderPayload{LeadDays: leadDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDueReminder, body, asynq.Queue(QueueDefault)), nil
}

// DueReminderJob mails owners whose maintenance dues fall due soon.
type DueReminderJob struct {
	Pool    *pgxpool.Pool
	Mailer  Mailer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewDueReminderJob initialises the reminder handler.
func NewDueReminderJob(pool *pgxpool.Pool, mailer Mailer, logger *slog.Logger, metrics *jobmetrics.Metrics) *DueReminderJob {
	return &DueReminderJob{
		Pool:    pool,
		Mailer:  mailer,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type dueReminder struct {
	CommunityID int64
	Email       string
	Name        string
	UnitLabel   string
	Period      string
	Amount      int64
	DueDate     time.Time
}

// Handle executes the reminder sweep.
func (j *DueReminderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("due reminder: handler not configured")
	}
	var payload DueReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.LeadDays <= 0 {
		payload.LeadDays = 3
	}

	tracker := j.Metrics.Track(TaskDueReminder)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	now := j.clock()
	until := now.AddDate(0, 0, payload.LeadDays)
	reminders, err := j.collect(ctx, now, until)
	if err != nil {
		resultErr = err
		j.Logger.Error("due reminder query", slog.Any("error", err))
		return resultErr
	}

	sent := map[int64]int{}
	for _, r := range reminders {
		subject := fmt.Sprintf("Pengingat iuran %s untuk unit %s", r.Period, r.UnitLabel)
		body := fmt.Sprintf(
			"Halo %s,\n\nIuran pemeliharaan unit %s periode %s sebesar Rp %d jatuh tempo pada %s.\n"+
				"Mohon lakukan pembayaran sebelum tanggal tersebut.",
			r.Name, r.UnitLabel, r.Period, r.Amount, r.DueDate.Format("2 January 2006"),
		)
		if err := j.Mailer.Send(ctx, r.Email, subject, body); err != nil {
			j.Logger.Error("send due reminder", slog.String("to", r.Email), slog.Any("error", err))
			continue
		}
		sent[r.CommunityID]++
	}
	for communityID, count := range sent {
		j.Metrics.AddReminders(communityID, count)
	}

	j.Logger.Info("completed due reminder sweep",
		slog.Int("candidates", len(reminders)),
		slog.Duration("duration", time.Since(now)),
	)
	return resultErr
}

func (j *DueReminderJob) collect(ctx context.Context, from, until time.Time) ([]dueReminder, error) {
	rows, err := j.Pool.Query(ctx, `SELECT d.community_id, u.email, u.name, un.tower || '-' || un.number, d.period, d.amount, d.due_date
FROM maintenance_dues d
JOIN units un ON un.id = d.unit_id
JOIN unit_assignments ua ON ua.unit_id = d.unit_id AND ua.occupancy = 'owner'
JOIN users u ON u.id = ua.user_id
WHERE d.status = 'unpaid' AND d.due_date >= $1 AND d.due_date < $2
ORDER BY d.community_id, d.due_date`, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dueReminder
	for rows.Next() {
		var r dueReminder
		if err := rows.Scan(&r.CommunityID, &r.Email, &r.Name, &r.UnitLabel, &r.Period, &r.Amount, &r.DueDate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
