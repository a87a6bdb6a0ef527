package worker

import (
	"context"
	"fmt"
	"log"
)

// Mailer abstracts the transactional email provider, which is an external
// collaborator. The default implementation only logs, so the queue drains in
// environments without a provider configured.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	log.Printf("[mail] to=%s subject=%q (%d bytes)", to, subject, len(body))
	return nil
}

// RegisterEmailHandlers wires the email job types onto the worker.
func RegisterEmailHandlers(w *Worker, mailer Mailer) {
	w.RegisterHandler(JobTypeContactEmail, func(ctx context.Context, job *Job) error {
		body := fmt.Sprintf("New inquiry from %s <%s>\n\n%s",
			job.Payload["name"], job.Payload["email"], job.Payload["message"])
		subject := fmt.Sprintf("New inquiry: %s", job.Payload["subject"])
		return mailer.Send(ctx, job.Payload["to"], subject, body)
	})

	w.RegisterHandler(JobTypeOTPEmail, func(ctx context.Context, job *Job) error {
		body := fmt.Sprintf("Your sign-in code is %s. It expires in 10 minutes.", job.Payload["code"])
		return mailer.Send(ctx, job.Payload["to"], "Your sign-in code", body)
	})

	w.RegisterHandler(JobTypeWelcomeEmail, func(ctx context.Context, job *Job) error {
		body := fmt.Sprintf("Hi %s, welcome aboard!", job.Payload["name"])
		return mailer.Send(ctx, job.Payload["to"], "Welcome", body)
	})
}
