package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medication-tracking-service/internal/domain/entities"
	"medication-tracking-service/internal/domain/repositories"
	"medication-tracking-service/internal/domain/workflow"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type QRRegistryServiceImpl struct {
	repo   repositories.QRCodeRepositoryContract
	logger zerolog.Logger
}

func NewQRRegistryService(repo repositories.QRCodeRepositoryContract, logger zerolog.Logger) QRRegistryServiceContract {
	return &QRRegistryServiceImpl{
		repo:   repo,
		logger: logger.With().Str("component", "qr_registry").Logger(),
	}
}

func (s *QRRegistryServiceImpl) Issue(ctx context.Context, checkpoint workflow.CheckpointType, label string) (*entities.QRCode, error) {
	if !checkpoint.IsValid() {
		return nil, invalid("type", fmt.Sprintf("tipo de punto de control desconocido %q", checkpoint))
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = string(checkpoint)
	}

	code := &entities.QRCode{Type: checkpoint, Label: label, IsActive: true}
	if err := s.repo.Create(ctx, code); err != nil {
		return nil, fmt.Errorf("issuing qr code: %w", err)
	}
	s.logger.Info().
		Str("qr_code_id", code.ID.String()).
		Str("checkpoint", string(checkpoint)).
		Msg("qr_code_issued")
	return code, nil
}

func (s *QRRegistryServiceImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	err := s.repo.SetActive(ctx, id, active)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrQRCodeNotFound
	}
	if err != nil {
		return fmt.Errorf("toggling qr code %s: %w", id, err)
	}
	s.logger.Info().Str("qr_code_id", id.String()).Bool("active", active).Msg("qr_code_toggled")
	return nil
}

func (s *QRRegistryServiceImpl) Resolve(ctx context.Context, token string) (*entities.QRCode, error) {
	id, err := uuid.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, ErrQRCodeNotFound
	}
	code, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrQRCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolving qr code %s: %w", id, err)
	}
	return code, nil
}

func (s *QRRegistryServiceImpl) List(ctx context.Context) ([]*entities.QRCode, error) {
	codes, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing qr codes: %w", err)
	}
	return codes, nil
}
