package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-recipe-api/pkg/mailer/templates"
)

// ErrMalformedJob marks a message that can never be delivered and must not be requeued.
var ErrMalformedJob = errors.New("malformed notification job")

// Sender delivers one rendered email. *Mailgun implements it.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Dispatcher turns queue messages into emails. With a nil Sender jobs are only logged.
type Dispatcher struct {
	AppName string
	Sender  Sender
	Logger  *logrus.Logger
}

// Handle decodes body, renders it and sends it. Errors wrapping ErrMalformedJob are permanent.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) error {
	var job NotificationJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}
	if job.Type == "" || job.To == "" {
		return fmt.Errorf("%w: type and to are required", ErrMalformedJob)
	}

	subject, text, html, err := templates.Render(job.Type, templates.Data{
		AppName:    d.AppName,
		Name:       job.Name,
		Email:      job.To,
		IP:         job.IP,
		UserAgent:  job.UserAgent,
		OccurredAt: job.OccurredAt,
		Extra:      job.Data,
	})
	if err != nil {
		return fmt.Errorf("%w: render %s: %v", ErrMalformedJob, job.Type, err)
	}

	entry := d.Logger.WithFields(logrus.Fields{"type": job.Type, "user_id": job.UserID, "to": job.To})
	if d.Sender == nil {
		entry.WithField("subject", subject).Info("notification (mail sending disabled)")
		return nil
	}
	if err := d.Sender.Send(ctx, job.To, subject, text, html); err != nil {
		return fmt.Errorf("send %s: %w", job.Type, err)
	}
	entry.Info("notification sent")
	return nil
}
