package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-recipe-api/pkg/helpers"
)

type sentMail struct {
	to, subject, text, html string
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, text, html})
	return nil
}

func jobBody(t *testing.T, job NotificationJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func profileJob() NotificationJob {
	return NotificationJob{
		Type:       ProfileViewed,
		UserID:     "u1",
		To:         "test@example.com",
		Name:       "Test",
		IP:         "10.0.0.1",
		UserAgent:  "curl/8",
		OccurredAt: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestDispatcher_SendsRenderedMail(t *testing.T) {
	sender := &fakeSender{}
	d := &Dispatcher{AppName: "Recipes", Sender: sender, Logger: helpers.NewDiscardLogger()}

	require.NoError(t, d.Handle(context.Background(), jobBody(t, profileJob())))

	require.Len(t, sender.sent, 1)
	m := sender.sent[0]
	assert.Equal(t, "test@example.com", m.to)
	assert.Equal(t, "Recipes: your profile was viewed", m.subject)
	assert.Contains(t, m.text, "Hi Test,")
	assert.Contains(t, m.text, "10.0.0.1")
	assert.Contains(t, m.html, "<strong>test@example.com</strong>")
}

func TestDispatcher_LogsWhenSendingDisabled(t *testing.T) {
	d := &Dispatcher{AppName: "Recipes", Logger: helpers.NewDiscardLogger()}
	assert.NoError(t, d.Handle(context.Background(), jobBody(t, profileJob())))
}

func TestDispatcher_PermanentFailures(t *testing.T) {
	d := &Dispatcher{Sender: &fakeSender{}, Logger: helpers.NewDiscardLogger()}

	assert.ErrorIs(t, d.Handle(context.Background(), []byte("{not json")), ErrMalformedJob)

	job := profileJob()
	job.To = ""
	assert.ErrorIs(t, d.Handle(context.Background(), jobBody(t, job)), ErrMalformedJob)

	job = profileJob()
	job.Type = "no_such_template"
	assert.ErrorIs(t, d.Handle(context.Background(), jobBody(t, job)), ErrMalformedJob)
}

func TestDispatcher_SendFailureIsRetryable(t *testing.T) {
	boom := errors.New("mailgun down")
	d := &Dispatcher{Sender: &fakeSender{err: boom}, Logger: helpers.NewDiscardLogger()}

	err := d.Handle(context.Background(), jobBody(t, profileJob()))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrMalformedJob)
}
