package handlers

import (
	"context"
	"time"

	"medication-tracking-service/internal/domain/dtos"
	"medication-tracking-service/internal/domain/entities"
	"medication-tracking-service/internal/domain/workflow"
	"medication-tracking-service/internal/services"

	"github.com/google/uuid"
)

var (
	_ services.IdentityServiceContract          = (*MockIdentityService)(nil)
	_ services.DispatchServiceContract          = (*MockDispatchService)(nil)
	_ services.DailyProcessServiceContract      = (*MockDailyProcessService)(nil)
	_ services.MedicationProcessServiceContract = (*MockProcessService)(nil)
	_ services.QRRegistryServiceContract        = (*MockQRRegistryService)(nil)
	_ services.PatientServiceContract           = (*MockPatientService)(nil)
	_ services.NotificationServiceContract      = (*MockNotificationService)(nil)
)

// MockIdentityService resolves tokens from a fixed map.
type MockIdentityService struct {
	Sessions  map[string]*dtos.Identity
	LoginFunc func(ctx context.Context, req dtos.LoginRequest) (*dtos.LoginResponse, error)
}

func (m *MockIdentityService) Register(ctx context.Context, username, displayName, password, role string) (*entities.Staff, error) {
	return &entities.Staff{ID: uuid.New(), Username: username, Role: role}, nil
}

func (m *MockIdentityService) Login(ctx context.Context, req dtos.LoginRequest) (*dtos.LoginResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return nil, services.ErrInvalidCredentials
}

func (m *MockIdentityService) CurrentIdentity(ctx context.Context, token string) (*dtos.Identity, error) {
	if who, ok := m.Sessions[token]; ok {
		return who, nil
	}
	return nil, services.ErrUnauthenticated
}

func (m *MockIdentityService) Logout(ctx context.Context, token string) error {
	delete(m.Sessions, token)
	return nil
}

type MockDispatchService struct {
	DispatchFunc func(ctx context.Context, req dtos.DispatchRequest) (*dtos.DispatchResult, error)
	LastRequest  dtos.DispatchRequest
}

func (m *MockDispatchService) Dispatch(ctx context.Context, req dtos.DispatchRequest) (*dtos.DispatchResult, error) {
	m.LastRequest = req
	if m.DispatchFunc != nil {
		return m.DispatchFunc(ctx, req)
	}
	return &dtos.DispatchResult{Success: true, TransitionedProcessIDs: []uuid.UUID{}}, nil
}

type MockDailyProcessService struct {
	CurrentFunc   func(ctx context.Context, now time.Time) (*entities.DailyProcess, error)
	OpenTodayFunc func(ctx context.Context, now time.Time) (*entities.DailyProcess, bool, error)
}

func (m *MockDailyProcessService) Current(ctx context.Context, now time.Time) (*entities.DailyProcess, error) {
	if m.CurrentFunc != nil {
		return m.CurrentFunc(ctx, now)
	}
	return nil, services.ErrNoActiveBatch
}

func (m *MockDailyProcessService) OpenToday(ctx context.Context, now time.Time) (*entities.DailyProcess, bool, error) {
	if m.OpenTodayFunc != nil {
		return m.OpenTodayFunc(ctx, now)
	}
	return &entities.DailyProcess{ID: uuid.New(), Day: m.Day(now)}, true, nil
}

func (m *MockDailyProcessService) Day(now time.Time) string { return now.Format(entities.DayLayout) }

type MockProcessService struct {
	StartFunc     func(ctx context.Context, req dtos.StartProcessRequest, createdBy string, now time.Time) (*entities.MedicationProcess, error)
	GetFunc       func(ctx context.Context, id uuid.UUID) (*entities.MedicationProcess, error)
	ListTodayFunc func(ctx context.Context, query dtos.ProcessQuery, now time.Time) ([]*entities.MedicationProcess, error)
	HistoryFunc   func(ctx context.Context, id uuid.UUID) ([]*entities.ScanRecord, error)
}

func (m *MockProcessService) Start(ctx context.Context, req dtos.StartProcessRequest, createdBy string, now time.Time) (*entities.MedicationProcess, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, req, createdBy, now)
	}
	return &entities.MedicationProcess{ID: uuid.New(), PatientID: req.PatientID, Step: workflow.Step(req.Step), Status: workflow.StatusInProgress, CreatedBy: createdBy}, nil
}

func (m *MockProcessService) Get(ctx context.Context, id uuid.UUID) (*entities.MedicationProcess, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, services.ErrProcessNotFound
}

func (m *MockProcessService) ListToday(ctx context.Context, query dtos.ProcessQuery, now time.Time) ([]*entities.MedicationProcess, error) {
	if m.ListTodayFunc != nil {
		return m.ListTodayFunc(ctx, query, now)
	}
	return []*entities.MedicationProcess{}, nil
}

func (m *MockProcessService) History(ctx context.Context, id uuid.UUID) ([]*entities.ScanRecord, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, id)
	}
	return []*entities.ScanRecord{}, nil
}

type MockQRRegistryService struct {
	SetActiveCalls int
}

func (m *MockQRRegistryService) Issue(ctx context.Context, checkpoint workflow.CheckpointType, label string) (*entities.QRCode, error) {
	if !checkpoint.IsValid() {
		return nil, &services.ValidationError{Field: "type", Message: "tipo desconocido"}
	}
	return &entities.QRCode{ID: uuid.New(), Type: checkpoint, Label: label, IsActive: true}, nil
}

func (m *MockQRRegistryService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	m.SetActiveCalls++
	return nil
}

func (m *MockQRRegistryService) Resolve(ctx context.Context, token string) (*entities.QRCode, error) {
	return nil, services.ErrQRCodeNotFound
}

func (m *MockQRRegistryService) List(ctx context.Context) ([]*entities.QRCode, error) {
	return []*entities.QRCode{}, nil
}

type MockPatientService struct {
	Patients map[uuid.UUID]*entities.Patient
}

func (m *MockPatientService) Register(ctx context.Context, req dtos.CreatePatientRequest) (*entities.Patient, error) {
	return &entities.Patient{ID: uuid.New(), Name: req.Name, Bed: req.Bed, LineID: req.LineID}, nil
}

func (m *MockPatientService) Get(ctx context.Context, id uuid.UUID) (*entities.Patient, error) {
	if p, ok := m.Patients[id]; ok {
		return p, nil
	}
	return nil, services.ErrPatientNotFound
}

func (m *MockPatientService) Update(ctx context.Context, id uuid.UUID, req dtos.UpdatePatientRequest) (*entities.Patient, error) {
	p, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Bed != "" {
		p.Bed = req.Bed
	}
	return p, nil
}

func (m *MockPatientService) ListByLine(ctx context.Context, lineID uuid.UUID) ([]*entities.Patient, error) {
	return nil, services.ErrLineNotFound
}

func (m *MockPatientService) CreateLine(ctx context.Context, req dtos.CreateLineRequest) (*entities.Line, error) {
	return &entities.Line{ID: uuid.New(), Name: req.Name}, nil
}

func (m *MockPatientService) ListLines(ctx context.Context) ([]*entities.Line, error) {
	return []*entities.Line{}, nil
}

type MockNotificationService struct {
	Feed []dtos.ProcessTransitionedEvent
}

func (m *MockNotificationService) Start(ctx context.Context) error { return nil }
func (m *MockNotificationService) Stop(ctx context.Context) error  { return nil }

func (m *MockNotificationService) Recent(lineID uuid.UUID, limit int) []dtos.ProcessTransitionedEvent {
	if limit > len(m.Feed) {
		limit = len(m.Feed)
	}
	return m.Feed[:limit]
}
