package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	to      []string
	subject string
	body    string
	err     error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, to)
	m.subject = subject
	m.body = body
	return nil
}

func TestNewInviteMailTask(t *testing.T) {
	task, err := NewInviteMailTask(InviteMailPayload{
		Email:     "warga@contoh.id",
		Name:      "Warga",
		Community: "Griya Asri",
		Role:      "resident",
		Token:     "tok-abc",
		BaseURL:   "https://hub.contoh.id",
	})
	require.NoError(t, err)
	require.Equal(t, TaskTypeInviteMail, task.Type())

	var payload InviteMailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, "warga@contoh.id", payload.Email)
	require.Equal(t, "tok-abc", payload.Token)
}

func TestInviteMailJobSendsActivationLink(t *testing.T) {
	mailer := &fakeMailer{}
	job := NewInviteMailJob(mailer, slog.New(slog.NewTextHandler(io.Discard, nil)))

	task, err := NewInviteMailTask(InviteMailPayload{
		Email:     "warga@contoh.id",
		Name:      "Warga",
		Community: "Griya Asri",
		Role:      "resident",
		Token:     "tok-abc",
		BaseURL:   "https://hub.contoh.id",
	})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, []string{"warga@contoh.id"}, mailer.to)
	require.Contains(t, mailer.subject, "Griya Asri")
	require.Contains(t, mailer.body, "https://hub.contoh.id/auth/invite/tok-abc")
}

func TestInviteMailJobSkipsRetryOnMalformedPayload(t *testing.T) {
	job := NewInviteMailJob(&fakeMailer{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	task := asynq.NewTask(TaskTypeInviteMail, []byte("not-json"))
	err := job.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestInviteMailJobPropagatesSendFailure(t *testing.T) {
	sendErr := errors.New("smtp down")
	job := NewInviteMailJob(&fakeMailer{err: sendErr}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	task, err := NewInviteMailTask(InviteMailPayload{Email: "warga@contoh.id"})
	require.NoError(t, err)
	require.ErrorIs(t, job.Handle(context.Background(), task), sendErr)
}

func TestNewDueReminderTask(t *testing.T) {
	task, err := NewDueReminderTask(5)
	require.NoError(t, err)
	require.Equal(t, TaskDueReminder, task.Type())

	var payload DueReminderPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, 5, payload.LeadDays)
}

func TestNewVisitorPurgeTask(t *testing.T) {
	task, err := NewVisitorPurgeTask(90 * 24 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, TaskVisitorPurge, task.Type())

	var payload VisitorPurgePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, 90*24, payload.RetentionHours)
}

func TestJobsFailWhenUnconfigured(t *testing.T) {
	task, err := NewVisitorPurgeTask(time.Hour)
	require.NoError(t, err)
	require.Error(t, (&VisitorPurgeJob{}).Handle(context.Background(), task))

	reminder, err := NewDueReminderTask(1)
	require.NoError(t, err)
	require.Error(t, (&DueReminderJob{}).Handle(context.Background(), reminder))
}
