package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"medication-tracking-service/internal/adapters"
	"medication-tracking-service/internal/domain/entities"
	"medication-tracking-service/internal/domain/repositories"
	"medication-tracking-service/internal/domain/workflow"

	"github.com/google/uuid"
)

// --- MockPatientRepository ---
var _ repositories.PatientRepositoryContract = (*MockPatientRepository)(nil)

type MockPatientRepository struct {
	CreateFunc     func(ctx context.Context, patient *entities.Patient) error
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*entities.Patient, error)
	UpdateFunc     func(ctx context.Context, patient *entities.Patient) error
	ListByLineFunc func(ctx context.Context, lineID uuid.UUID) ([]*entities.Patient, error)
	ListAllFunc    func(ctx context.Context) ([]*entities.Patient, error)

	CreateFuncCallCount int32
	UpdateFuncCallCount int32
}

func (m *MockPatientRepository) Create(ctx context.Context, patient *entities.Patient) error {
	atomic.AddInt32(&m.CreateFuncCallCount, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, patient)
	}
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	return nil
}

func (m *MockPatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Patient, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrNotFound
}

func (m *MockPatientRepository) Update(ctx context.Context, patient *entities.Patient) error {
	atomic.AddInt32(&m.UpdateFuncCallCount, 1)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, patient)
	}
	return nil
}

func (m *MockPatientRepository) ListByLine(ctx context.Context, lineID uuid.UUID) ([]*entities.Patient, error) {
	if m.ListByLineFunc != nil {
		return m.ListByLineFunc(ctx, lineID)
	}
	return nil, nil
}

func (m *MockPatientRepository) ListAll(ctx context.Context) ([]*entities.Patient, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

// --- MockLineRepository ---
var _ repositories.LineRepositoryContract = (*MockLineRepository)(nil)

type MockLineRepository struct {
	mu    sync.Mutex
	lines map[uuid.UUID]*entities.Line

	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*entities.Line, error)
}

func NewMockLineRepository(lines ...*entities.Line) *MockLineRepository {
	m := &MockLineRepository{lines: make(map[uuid.UUID]*entities.Line)}
	for _, l := range lines {
		m.lines[l.ID] = l
	}
	return m
}

func (m *MockLineRepository) Create(ctx context.Context, line *entities.Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	m.lines[line.ID] = line
	return nil
}

func (m *MockLineRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Line, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.lines[id]; ok {
		return l, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *MockLineRepository) ListAll(ctx context.Context) ([]*entities.Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entities.Line, 0, len(m.lines))
	for _, l := range m.lines {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- MockQRCodeRepository ---
var _ repositories.QRCodeRepositoryContract = (*MockQRCodeRepository)(nil)

type MockQRCodeRepository struct {
	mu    sync.Mutex
	codes map[uuid.UUID]*entities.QRCode

	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*entities.QRCode, error)
}

func NewMockQRCodeRepository(codes ...*entities.QRCode) *MockQRCodeRepository {
	m := &MockQRCodeRepository{codes: make(map[uuid.UUID]*entities.QRCode)}
	for _, c := range codes {
		m.codes[c.ID] = c
	}
	return m
}

func (m *MockQRCodeRepository) Create(ctx context.Context, code *entities.QRCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	m.codes[code.ID] = code
	return nil
}

func (m *MockQRCodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.QRCode, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.codes[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *MockQRCodeRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.IsActive = active
	return nil
}

func (m *MockQRCodeRepository) ListAll(ctx context.Context) ([]*entities.QRCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entities.QRCode, 0, len(m.codes))
	for _, c := range m.codes {
		out = append(out, c)
	}
	return out, nil
}

// --- MockDailyProcessRepository ---
var _ repositories.DailyProcessRepositoryContract = (*MockDailyProcessRepository)(nil)

type MockDailyProcessRepository struct {
	mu      sync.Mutex
	batches map[string]*entities.DailyProcess

	FindByDayFunc func(ctx context.Context, day string) (*entities.DailyProcess, error)
}

func NewMockDailyProcessRepository(batches ...*entities.DailyProcess) *MockDailyProcessRepository {
	m := &MockDailyProcessRepository{batches: make(map[string]*entities.DailyProcess)}
	for _, b := range batches {
		m.batches[b.Day] = b
	}
	return m
}

func (m *MockDailyProcessRepository) FindByDay(ctx context.Context, day string) (*entities.DailyProcess, error) {
	if m.FindByDayFunc != nil {
		return m.FindByDayFunc(ctx, day)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.batches[day]; ok {
		return b, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *MockDailyProcessRepository) GetOrCreate(ctx context.Context, day string) (*entities.DailyProcess, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.batches[day]; ok {
		return b, false, nil
	}
	b := &entities.DailyProcess{ID: uuid.New(), Day: day, CreatedAt: time.Now()}
	m.batches[day] = b
	return b, true, nil
}

// --- MockStaffRepository ---
var _ repositories.StaffRepositoryContract = (*MockStaffRepository)(nil)

type MockStaffRepository struct {
	mu       sync.Mutex
	staff    map[uuid.UUID]*entities.Staff
	sessions map[uuid.UUID]*entities.Session

	CreateSessionFunc func(ctx context.Context, session *entities.Session) error
}

func NewMockStaffRepository() *MockStaffRepository {
	return &MockStaffRepository{
		staff:    make(map[uuid.UUID]*entities.Staff),
		sessions: make(map[uuid.UUID]*entities.Session),
	}
}

func (m *MockStaffRepository) Create(ctx context.Context, s *entities.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.staff[s.ID] = s
	return nil
}

func (m *MockStaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.staff[id]; ok {
		return s, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *MockStaffRepository) FindByUsername(ctx context.Context, username string) (*entities.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.staff {
		if s.Username == username {
			return s, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *MockStaffRepository) CreateSession(ctx context.Context, session *entities.Session) error {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.Token] = session
	return nil
}

func (m *MockStaffRepository) GetSession(ctx context.Context, token uuid.UUID) (*entities.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[token]; ok {
		return s, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *MockStaffRepository) DeleteSession(ctx context.Context, token uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// --- memProcessStore ---
// memProcessStore is an in-memory MedicationProcessRepositoryContract whose
// CompareAndSetStatus is atomic under a mutex, like the conditional UPDATE of
// the gorm repository.
var _ repositories.MedicationProcessRepositoryContract = (*memProcessStore)(nil)

type memProcessStore struct {
	mu          sync.Mutex
	processes   map[uuid.UUID]*entities.MedicationProcess
	order       []uuid.UUID
	scans       []*entities.ScanRecord
	patientLine map[uuid.UUID]uuid.UUID

	// BeforeCAS runs before each swap, outside the lock. It may return an
	// error to simulate a store failure.
	BeforeCAS    func(id uuid.UUID) error
	FindErr      error
	CASCallCount int32
}

func newMemProcessStore() *memProcessStore {
	return &memProcessStore{
		processes:   make(map[uuid.UUID]*entities.MedicationProcess),
		patientLine: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *memProcessStore) addPatient(lineID uuid.UUID) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.patientLine[id] = lineID
	return id
}

func (m *memProcessStore) Create(ctx context.Context, p *entities.MedicationProcess) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.Status.HoldsSlot() {
		for _, other := range m.processes {
			if other.PatientID == p.PatientID && other.Step == p.Step &&
				other.DailyProcessID == p.DailyProcessID && other.Status.HoldsSlot() {
				return repositories.ErrConflict
			}
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.processes[p.ID] = &cp
	m.order = append(m.order, p.ID)
	return nil
}

func (m *memProcessStore) GetByID(ctx context.Context, id uuid.UUID) (*entities.MedicationProcess, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.processes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProcessStore) status(id uuid.UUID) workflow.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processes[id].Status
}

func (m *memProcessStore) FindEligible(ctx context.Context, f repositories.EligibleFilter) ([]*entities.MedicationProcess, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.MedicationProcess
	for _, id := range m.order {
		p := m.processes[id]
		if p.DailyProcessID != f.DailyProcessID || p.Step != f.Step || m.patientLine[p.PatientID] != f.LineID {
			continue
		}
		for _, s := range f.Statuses {
			if p.Status == s {
				cp := *p
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (m *memProcessStore) List(ctx context.Context, f repositories.ProcessListFilter) ([]*entities.MedicationProcess, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.MedicationProcess
	for _, id := range m.order {
		p := m.processes[id]
		if f.DailyProcessID != uuid.Nil && p.DailyProcessID != f.DailyProcessID {
			continue
		}
		if f.Step != "" && p.Step != f.Step {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.LineID != uuid.Nil && m.patientLine[p.PatientID] != f.LineID {
			continue
		}
		if f.PatientID != uuid.Nil && p.PatientID != f.PatientID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memProcessStore) FindActive(ctx context.Context, patientID uuid.UUID, step workflow.Step, batchID uuid.UUID) (*entities.MedicationProcess, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		p := m.processes[id]
		if p.PatientID == patientID && p.Step == step && p.DailyProcessID == batchID && p.Status.HoldsSlot() {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memProcessStore) CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected, next workflow.Status, receipt *entities.ScanRecord) (bool, error) {
	atomic.AddInt32(&m.CASCallCount, 1)
	if m.BeforeCAS != nil {
		if err := m.BeforeCAS(id); err != nil {
			return false, err
		}
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.processes[id]
	if !ok || p.Status != expected {
		return false, nil
	}
	p.Status = next
	p.UpdatedAt = time.Now()

	receipt.ID = uuid.New()
	receipt.MedicationProcessID = id
	receipt.FromStatus = expected
	receipt.ToStatus = next
	receipt.CreatedAt = time.Now()
	cp := *receipt
	m.scans = append(m.scans, &cp)
	return true, nil
}

func (m *memProcessStore) ListScanRecords(ctx context.Context, processID uuid.UUID) ([]*entities.ScanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.ScanRecord
	for _, s := range m.scans {
		if s.MedicationProcessID == processID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memProcessStore) scanCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scans)
}

// --- memOutbox ---
var (
	_ EventOutbox = (*memOutbox)(nil)
	_ RelayOutbox = (*memOutbox)(nil)
)

type memOutbox struct {
	mu        sync.Mutex
	seq       uint64
	entries   []adapters.OutboxEntry
	AppendErr error
}

func (o *memOutbox) Append(queue string, payload []byte) (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.AppendErr != nil {
		return 0, o.AppendErr
	}
	o.seq++
	o.entries = append(o.entries, adapters.OutboxEntry{Seq: o.seq, Queue: queue, Payload: payload, EnqueuedAt: time.Now()})
	return o.seq, nil
}

func (o *memOutbox) Pending(limit int) ([]adapters.OutboxEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := len(o.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	return append([]adapters.OutboxEntry(nil), o.entries[:n]...), nil
}

func (o *memOutbox) Ack(seq uint64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, e := range o.entries {
		if e.Seq == seq {
			o.entries = append(o.entries[:i], o.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (o *memOutbox) Retry(seq uint64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.entries {
		if o.entries[i].Seq == seq {
			o.entries[i].Attempts++
		}
	}
	return nil
}

func (o *memOutbox) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries)
}

// --- MockQueueAdapter ---
var _ adapters.QueueAdapter = (*MockQueueAdapter)(nil)

type MockQueueAdapter struct {
	PublishFunc func(ctx context.Context, queueName string, jobData []byte) error

	mu                sync.Mutex
	PublishedMessages map[string][][]byte
	Handlers          map[string]adapters.JobHandler
}

func NewMockQueueAdapter() *MockQueueAdapter {
	return &MockQueueAdapter{
		PublishedMessages: make(map[string][][]byte),
		Handlers:          make(map[string]adapters.JobHandler),
	}
}

func (m *MockQueueAdapter) Publish(ctx context.Context, queueName string, jobData []byte) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, queueName, jobData); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishedMessages[queueName] = append(m.PublishedMessages[queueName], jobData)
	return nil
}

func (m *MockQueueAdapter) StartConsuming(ctx context.Context, queueName string, handler adapters.JobHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Handlers[queueName]; ok {
		return errors.New("already consuming")
	}
	m.Handlers[queueName] = handler
	return nil
}

func (m *MockQueueAdapter) StopConsuming(ctx context.Context, queueName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Handlers, queueName)
	return nil
}

func (m *MockQueueAdapter) Close() error { return nil }

func (m *MockQueueAdapter) published(queueName string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.PublishedMessages[queueName]...)
}
