package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"medication-tracking-service/internal/domain/dtos"
	"medication-tracking-service/internal/domain/entities"
	"medication-tracking-service/internal/domain/repositories"
	"medication-tracking-service/internal/domain/workflow"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type MedicationProcessServiceImpl struct {
	processes repositories.MedicationProcessRepositoryContract
	patients  repositories.PatientRepositoryContract
	days      DailyProcessServiceContract
	logger    zerolog.Logger
}

func NewMedicationProcessService(
	processes repositories.MedicationProcessRepositoryContract,
	patients repositories.PatientRepositoryContract,
	days DailyProcessServiceContract,
	logger zerolog.Logger,
) MedicationProcessServiceContract {
	return &MedicationProcessServiceImpl{
		processes: processes,
		patients:  patients,
		days:      days,
		logger:    logger.With().Str("component", "medication_process").Logger(),
	}
}

func (s *MedicationProcessServiceImpl) Start(ctx context.Context, req dtos.StartProcessRequest, createdBy string, now time.Time) (*entities.MedicationProcess, error) {
	step, err := workflow.ParseStep(req.Step)
	if err != nil {
		return nil, invalid("step", "El paso debe ser DISPENSACION o DEVOLUCION")
	}
	if req.PatientID == uuid.Nil {
		return nil, invalid("patient_id", "El paciente es obligatorio")
	}

	batch, err := s.days.Current(ctx, now)
	if err != nil {
		return nil, err
	}

	if _, err := s.patients.GetByID(ctx, req.PatientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("loading patient %s: %w", req.PatientID, err)
	}

	_, err = s.processes.FindActive(ctx, req.PatientID, step, batch.ID)
	switch {
	case err == nil:
		return nil, ErrActiveProcessExists
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("checking active process: %w", err)
	}

	process := &entities.MedicationProcess{
		PatientID:      req.PatientID,
		DailyProcessID: batch.ID,
		Step:           step,
		Status:         workflow.StatusInProgress,
		Notes:          strings.TrimSpace(req.Notes),
		CreatedBy:      createdBy,
	}
	if err := s.processes.Create(ctx, process); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, ErrActiveProcessExists
		}
		return nil, fmt.Errorf("creating medication process: %w", err)
	}
	s.logger.Info().
		Str("process_id", process.ID.String()).
		Str("patient_id", process.PatientID.String()).
		Str("step", string(step)).
		Str("created_by", createdBy).
		Msg("process_started")
	return process, nil
}

func (s *MedicationProcessServiceImpl) Get(ctx context.Context, id uuid.UUID) (*entities.MedicationProcess, error) {
	p, err := s.processes.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProcessNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading process %s: %w", id, err)
	}
	return p, nil
}

func (s *MedicationProcessServiceImpl) ListToday(ctx context.Context, query dtos.ProcessQuery, now time.Time) ([]*entities.MedicationProcess, error) {
	filter, err := parseProcessQuery(query)
	if err != nil {
		return nil, err
	}
	batch, err := s.days.Current(ctx, now)
	if err != nil {
		return nil, err
	}
	filter.DailyProcessID = batch.ID

	list, err := s.processes.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	return list, nil
}

func parseProcessQuery(q dtos.ProcessQuery) (repositories.ProcessListFilter, error) {
	var f repositories.ProcessListFilter
	if q.Step != "" {
		step, err := workflow.ParseStep(q.Step)
		if err != nil {
			return f, invalid("step", "Paso desconocido")
		}
		f.Step = step
	}
	if q.Status != "" {
		st := workflow.Status(q.Status)
		if !st.IsValid() {
			return f, invalid("status", "Estado desconocido")
		}
		f.Status = st
	}
	if q.LineID != "" {
		id, err := uuid.Parse(q.LineID)
		if err != nil {
			return f, invalid("line_id", "Identificador de línea inválido")
		}
		f.LineID = id
	}
	if q.PatientID != "" {
		id, err := uuid.Parse(q.PatientID)
		if err != nil {
			return f, invalid("patient_id", "Identificador de paciente inválido")
		}
		f.PatientID = id
	}
	return f, nil
}

func (s *MedicationProcessServiceImpl) History(ctx context.Context, id uuid.UUID) ([]*entities.ScanRecord, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	scans, err := s.processes.ListScanRecords(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading scan history of %s: %w", id, err)
	}
	return scans, nil
}
