package services

import (
	"context"
	"log/slog"
	"strings"

	"xivttw/internal/models"
	"xivttw/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ContactService stores storefront contact messages.
type ContactService struct {
	log      *slog.Logger
	repo     repositories.ContactRepository
	validate *validator.Validate
}

func NewContactService(log *slog.Logger, repo repositories.ContactRepository) *ContactService {
	return &ContactService{log: log, repo: repo, validate: newValidator()}
}

// Submit validates and saves a message.
func (s *ContactService) Submit(ctx context.Context, msg *models.ContactMessage) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.Read = false
	if err := s.validate.Struct(msg); err != nil {
		return NewValidationError(err)
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return err
	}
	s.log.Info("contact message received", slog.String("op", "services.ContactService.Submit"), slog.String("id", msg.ID))
	return nil
}

func (s *ContactService) List(ctx context.Context) ([]models.ContactMessage, error) {
	return s.repo.List(ctx)
}

func (s *ContactService) SetRead(ctx context.Context, id string, read bool) error {
	return s.repo.SetRead(ctx, id, read)
}
