package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeInviteMail is the task type for member invitation mail.
	TaskTypeInviteMail = "mail:invite"
)

// InviteMailPayload carries everything needed to render an invitation.
type InviteMailPayload struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Community string `json:"community"`
	Role      string `json:"role"`
	Token     string `json:"token"`
	BaseURL   string `json:"base_url"`
}

// NewInviteMailTask constructs an Asynq task.
func NewInviteMailTask(payload InviteMailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeInviteMail, data, asynq.Queue(QueueDefault)), nil
}

// InviteMailJob delivers invitation mail enqueued by bulk registration.
type InviteMailJob struct {
	Mailer Mailer
	Logger *slog.Logger
}

// NewInviteMailJob initialises the invite mail handler.
func NewInviteMailJob(mailer Mailer, logger *slog.Logger) *InviteMailJob {
	return &InviteMailJob{Mailer: mailer, Logger: logger}
}

// Handle processes TaskTypeInviteMail tasks.
func (j *InviteMailJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Mailer == nil {
		return errors.New("invite mail: handler not configured")
	}
	var payload InviteMailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	subject := fmt.Sprintf("Undangan bergabung ke %s", payload.Community)
	body := fmt.Sprintf(
		"Halo %s,\n\nAnda diundang bergabung ke komunitas %s sebagai %s.\n"+
			"Aktifkan akun Anda melalui tautan berikut:\n\n%s/auth/invite/%s\n\n"+
			"Abaikan email ini jika Anda merasa tidak pernah didaftarkan.",
		payload.Name, payload.Community, payload.Role, payload.BaseURL, payload.Token,
	)
	if err := j.Mailer.Send(ctx, payload.Email, subject, body); err != nil {
		j.Logger.Error("send invite mail", slog.String("to", payload.Email), slog.Any("error", err))
		return err
	}
	j.Logger.Info("invite mail sent", slog.String("to", payload.Email))
	return nil
}
