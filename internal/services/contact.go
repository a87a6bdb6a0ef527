package services

import (
	"context"
	"errors"

	"todo-starter/backend/internal/models"
	"todo-starter/backend/internal/worker"

	"gorm.io/gorm"
)

type ContactForm struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,min=1,max=200"`
	Message string `json:"message" binding:"required,min=1,max=5000"`
}

type ContactService interface {
	SubmitContactForm(ctx context.Context, db *gorm.DB, form ContactForm) error
}

type ContactServiceImpl struct {
	jobs *worker.Worker
}

func NewContactService(jobs *worker.Worker) *ContactServiceImpl {
	return &ContactServiceImpl{jobs: jobs}
}

// SubmitContactForm fans the inquiry out to every admin profile as one email
// job per admin.
func (s *ContactServiceImpl) SubmitContactForm(ctx context.Context, db *gorm.DB, form ContactForm) error {
	var admins []models.Profile
	err := db.Where("role = ?", models.RoleAdmin).Find(&admins).Error
	if err != nil {
		return err
	}

	if len(admins) == 0 {
		return errors.New("no administrators configured")
	}

	for _, admin := range admins {
		job := worker.NewJob(worker.JobTypeContactEmail, map[string]string{
			"to":      admin.Email,
			"name":    form.Name,
			"email":   form.Email,
			"subject": form.Subject,
			"message": form.Message,
		})
		if err := s.jobs.Enqueue(ctx, worker.QueueEmails, job); err != nil {
			return err
		}
	}

	return nil
}
