package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medication-tracking-service/internal/domain/dtos"
	"medication-tracking-service/internal/domain/entities"
	"medication-tracking-service/internal/domain/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PatientServiceImpl implements PatientServiceContract.
type PatientServiceImpl struct {
	patientRepo repositories.PatientRepositoryContract
	lineRepo    repositories.LineRepositoryContract
	logger      zerolog.Logger
}

// NewPatientService creates a new instance of PatientServiceImpl.
func NewPatientService(patientRepo repositories.PatientRepositoryContract, lineRepo repositories.LineRepositoryContract, logger zerolog.Logger) PatientServiceContract {
	return &PatientServiceImpl{
		patientRepo: patientRepo,
		lineRepo:    lineRepo,
		logger:      logger.With().Str("component", "patients").Logger(),
	}
}

func (s *PatientServiceImpl) requireLine(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return invalid("line_id", "La línea es obligatoria")
	}
	_, err := s.lineRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrLineNotFound
	}
	if err != nil {
		return fmt.Errorf("loading line %s: %w", id, err)
	}
	return nil
}

func (s *PatientServiceImpl) Register(ctx context.Context, req dtos.CreatePatientRequest) (*entities.Patient, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		return nil, invalid("name", "El nombre del paciente es obligatorio")
	}
	if err := s.requireLine(ctx, req.LineID); err != nil {
		return nil, err
	}

	patient := &entities.Patient{Name: name, Bed: strings.TrimSpace(req.Bed), LineID: req.LineID}
	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("registering patient: %w", err)
	}
	s.logger.Info().
		Str("patient_id", patient.ID.String()).
		Str("line_id", patient.LineID.String()).
		Msg("patient_registered")
	return patient, nil
}

func (s *PatientServiceImpl) Get(ctx context.Context, id uuid.UUID) (*entities.Patient, error) {
	p, err := s.patientRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading patient %s: %w", id, err)
	}
	return p, nil
}

func (s *PatientServiceImpl) Update(ctx context.Context, id uuid.UUID, req dtos.UpdatePatientRequest) (*entities.Patient, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		patient.Name = name
	}
	if bed := strings.TrimSpace(req.Bed); bed != "" {
		patient.Bed = bed
	}
	if req.LineID != uuid.Nil && req.LineID != patient.LineID {
		if err := s.requireLine(ctx, req.LineID); err != nil {
			return nil, err
		}
		patient.LineID = req.LineID
	}
	if err := s.patientRepo.Update(ctx, patient); err != nil {
		return nil, fmt.Errorf("updating patient %s: %w", id, err)
	}
	return patient, nil
}

func (s *PatientServiceImpl) ListByLine(ctx context.Context, lineID uuid.UUID) ([]*entities.Patient, error) {
	if err := s.requireLine(ctx, lineID); err != nil {
		return nil, err
	}
	patients, err := s.patientRepo.ListByLine(ctx, lineID)
	if err != nil {
		return nil, fmt.Errorf("listing patients of line %s: %w", lineID, err)
	}
	return patients, nil
}

func (s *PatientServiceImpl) CreateLine(ctx context.Context, req dtos.CreateLineRequest) (*entities.Line, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "El nombre de la línea es obligatorio")
	}
	line := &entities.Line{Name: name}
	if err := s.lineRepo.Create(ctx, line); err != nil {
		return nil, fmt.Errorf("creating line %q: %w", name, err)
	}
	s.logger.Info().Str("line_id", line.ID.String()).Str("line_name", name).Msg("line_created")
	return line, nil
}

func (s *PatientServiceImpl) ListLines(ctx context.Context) ([]*entities.Line, error) {
	lines, err := s.lineRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing lines: %w", err)
	}
	return lines, nil
}
