package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"medication-tracking-service/internal/domain/dtos"
	"medication-tracking-service/internal/domain/entities"
	"medication-tracking-service/internal/domain/repositories"
	"medication-tracking-service/internal/domain/workflow"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// TransitionEventsQueue receives one ProcessTransitionedEvent per committed
// transition.
const TransitionEventsQueue = "medication_process_transitions"

type DispatchServiceImpl struct {
	qrRegistry  QRRegistryServiceContract
	days        DailyProcessServiceContract
	lines       repositories.LineRepositoryContract
	processes   repositories.MedicationProcessRepositoryContract
	outbox      EventOutbox
	logger      zerolog.Logger
	now         func() time.Time
	parallelism int
}

// DispatchOption customises a DispatchServiceImpl.
type DispatchOption func(*DispatchServiceImpl)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) DispatchOption {
	return func(s *DispatchServiceImpl) { s.now = now }
}

// WithParallelism bounds how many records of one scan are transitioned at once.
func WithParallelism(n int) DispatchOption {
	return func(s *DispatchServiceImpl) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// NewDispatchService wires the dispatcher. outbox may be nil, in which case no
// transition events are emitted.
func NewDispatchService(
	qrRegistry QRRegistryServiceContract,
	days DailyProcessServiceContract,
	lines repositories.LineRepositoryContract,
	processes repositories.MedicationProcessRepositoryContract,
	outbox EventOutbox,
	logger zerolog.Logger,
	opts ...DispatchOption,
) DispatchServiceContract {
	s := &DispatchServiceImpl{
		qrRegistry:  qrRegistry,
		days:        days,
		lines:       lines,
		processes:   processes,
		outbox:      outbox,
		logger:      logger.With().Str("component", "dispatch").Logger(),
		now:         time.Now,
		parallelism: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type validatedScan struct {
	step   workflow.Step
	lineID uuid.UUID
	temp   float64
	txType string
	caller dtos.Identity
}

func validateScan(req dtos.DispatchRequest) (validatedScan, error) {
	var v validatedScan
	if req.Caller == nil || req.Caller.Username == "" {
		return v, newDispatchError(KindUnauthorized, ErrUnauthenticated)
	}
	v.caller = *req.Caller

	if strings.TrimSpace(req.ScanToken) == "" {
		return v, invalidScan("scan_token", "El código escaneado está vacío")
	}
	step, err := workflow.ParseStep(req.Step)
	if err != nil {
		return v, invalidScan("step", "El paso del proceso debe ser DISPENSACION o DEVOLUCION")
	}
	v.step = step

	if req.Temperature == nil || math.IsNaN(*req.Temperature) || math.IsInf(*req.Temperature, 0) {
		return v, invalidScan("temperature", "La temperatura debe ser un valor numérico")
	}
	v.temp = *req.Temperature

	lineID, err := uuid.Parse(strings.TrimSpace(req.DestinationLineID))
	if err != nil {
		return v, invalidScan("destination_line_id", "La línea de destino no es un identificador válido")
	}
	v.lineID = lineID

	v.txType = strings.TrimSpace(req.TransactionType)
	if v.txType == "" {
		return v, invalidScan("transaction_type", "El tipo de transacción es obligatorio")
	}
	return v, nil
}

func invalidScan(field, message string) *DispatchError {
	de := newDispatchError(KindInvalidRequest, invalid(field, message))
	de.UserMessage = message
	return de
}

type recordOutcome struct {
	attempted bool
	swapped   bool
	receipt   *entities.ScanRecord
	from      workflow.Status
	to        workflow.Status
}

func (s *DispatchServiceImpl) Dispatch(ctx context.Context, req dtos.DispatchRequest) (*dtos.DispatchResult, error) {
	scan, err := validateScan(req)
	if err != nil {
		return nil, err
	}
	log := s.logger.With().
		Str("scanned_by", scan.caller.Username).
		Str("step", string(scan.step)).
		Str("line_id", scan.lineID.String()).
		Logger()

	qr, err := s.qrRegistry.Resolve(ctx, req.ScanToken)
	if errors.Is(err, ErrQRCodeNotFound) {
		return nil, newDispatchError(KindInvalidToken, err)
	}
	if err != nil {
		return nil, s.storeUnavailable(log, "qr_lookup_failed", err)
	}
	if !qr.IsActive {
		return nil, newDispatchError(KindInvalidToken, fmt.Errorf("qr code %s is inactive", qr.ID))
	}
	if !workflow.Licensed(qr.Type, scan.step) {
		return nil, newDispatchError(KindInvalidToken, fmt.Errorf("checkpoint %s does not act on step %s", qr.Type, scan.step))
	}
	target, _ := workflow.Target(qr.Type)
	log = log.With().Str("checkpoint", string(qr.Type)).Logger()

	batch, err := s.days.Current(ctx, s.now())
	if errors.Is(err, ErrNoActiveBatch) {
		return nil, newDispatchError(KindNoActiveBatch, err)
	}
	if err != nil {
		return nil, s.storeUnavailable(log, "daily_process_lookup_failed", err)
	}

	line, err := s.lines.GetByID(ctx, scan.lineID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, newDispatchError(KindUnknownLine, fmt.Errorf("line %s: %w", scan.lineID, err))
	}
	if err != nil {
		return nil, s.storeUnavailable(log, "line_lookup_failed", err)
	}

	eligible, err := s.processes.FindEligible(ctx, repositories.EligibleFilter{
		DailyProcessID: batch.ID,
		Step:           scan.step,
		Statuses:       workflow.SourceStatuses(qr.Type),
		LineID:         line.ID,
	})
	if err != nil {
		return nil, s.storeUnavailable(log, "eligible_query_failed", err)
	}
	if len(eligible) == 0 {
		log.Info().Msg("no_eligible_processes")
		return nil, newDispatchError(KindNoEligibleProcesses, nil)
	}

	outcomes := make([]recordOutcome, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	scheduled := 0
	for i, p := range eligible {
		next, ok := workflow.Next(p.Status, qr.Type)
		if !ok {
			continue
		}
		scheduled++
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			receipt := &entities.ScanRecord{
				PatientID:         p.PatientID,
				QRCodeID:          qr.ID,
				DailyProcessID:    batch.ID,
				ScannedBy:         scan.caller.Username,
				DestinationLineID: line.ID,
				TransactionType:   scan.txType,
				Temperature:       scan.temp,
			}
			swapped, err := s.processes.CompareAndSetStatus(gctx, p.ID, p.Status, next, receipt)
			if err != nil {
				return fmt.Errorf("transition process %s: %w", p.ID, err)
			}
			outcomes[i] = recordOutcome{attempted: true, swapped: swapped, receipt: receipt, from: p.Status, to: next}
			return nil
		})
	}
	groupErr := g.Wait()

	result := &dtos.DispatchResult{
		Success:                true,
		TransitionedProcessIDs: []uuid.UUID{},
		Checkpoint:             string(qr.Type),
		NewStatus:              string(target),
		DailyProcessID:         batch.ID,
		LineName:               line.Name,
		NextStepHint:           workflow.NextStepHint(scan.step, target),
	}
	for i, o := range outcomes {
		p := eligible[i]
		if o.swapped {
			result.TransitionedProcessIDs = append(result.TransitionedProcessIDs, p.ID)
			s.emitTransition(log, p, line.ID, qr, scan.step, o)
			continue
		}
		if o.attempted {
			log.Debug().Str("process_id", p.ID.String()).Msg("record_skipped")
		}
		result.SkippedProcessIDs = append(result.SkippedProcessIDs, p.ID)
	}
	result.TransitionedCount = len(result.TransitionedProcessIDs)
	result.SkippedCount = len(result.SkippedProcessIDs)

	if groupErr == nil && ctx.Err() != nil && attemptedCount(outcomes) < scheduled {
		groupErr = ctx.Err()
	}
	if errors.Is(groupErr, context.Canceled) {
		log.Warn().Err(groupErr).Int("transitioned", result.TransitionedCount).Msg("dispatch_canceled")
		return nil, fmt.Errorf("dispatch canceled: %w", groupErr)
	}
	if groupErr != nil {
		log.Warn().Int("transitioned", result.TransitionedCount).Msg("dispatch_interrupted")
		return nil, s.storeUnavailable(log, "transition_failed", groupErr)
	}

	log.Info().
		Str("line_name", line.Name).
		Int("transitioned", result.TransitionedCount).
		Int("skipped", result.SkippedCount).
		Msg("dispatch_completed")
	return result, nil
}

func attemptedCount(outcomes []recordOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.attempted {
			n++
		}
	}
	return n
}

func (s *DispatchServiceImpl) storeUnavailable(log zerolog.Logger, action string, err error) *DispatchError {
	log.Error().Err(err).Msg(action)
	return newDispatchError(KindStoreUnavailable, err)
}

// emitTransition queues the event of a committed transition. Failures are
// logged only: the transition itself is already durable.
func (s *DispatchServiceImpl) emitTransition(log zerolog.Logger, p *entities.MedicationProcess, lineID uuid.UUID, qr *entities.QRCode, step workflow.Step, o recordOutcome) {
	if s.outbox == nil {
		return
	}
	evt := dtos.ProcessTransitionedEvent{
		EventID:        uuid.New(),
		ProcessID:      p.ID,
		PatientID:      p.PatientID,
		DailyProcessID: p.DailyProcessID,
		LineID:         lineID,
		ScanRecordID:   o.receipt.ID,
		QRCodeID:       qr.ID,
		Step:           string(step),
		Checkpoint:     string(qr.Type),
		FromStatus:     string(o.from),
		ToStatus:       string(o.to),
		ScannedBy:      o.receipt.ScannedBy,
		OccurredAt:     s.now().UTC(),
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		log.Error().Err(err).Str("process_id", p.ID.String()).Msg("event_encode_failed")
		return
	}
	if _, err := s.outbox.Append(TransitionEventsQueue, payload); err != nil {
		log.Error().Err(err).Str("process_id", p.ID.String()).Msg("event_append_failed")
	}
}
