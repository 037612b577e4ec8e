package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"crm_backend/internal/events"
	funnels "crm_backend/internal/funnels/domain"
	"crm_backend/internal/leads/domain"
	"crm_backend/internal/leads/repository"
	txdomain "crm_backend/internal/transactions/domain"

	"github.com/google/uuid"
)

// memRepo keeps leads and their ledger in memory. Audited writes apply the
// change and append the entry together, or not at all.
type memRepo struct {
	mu      sync.Mutex
	now     time.Time
	leads   map[uuid.UUID]*domain.Lead
	users   map[uuid.UUID]domain.User
	records []txdomain.Record
}

func newMemRepo() *memRepo {
	return &memRepo{
		now:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		leads: map[uuid.UUID]*domain.Lead{},
		users: map[uuid.UUID]domain.User{},
	}
}

func (m *memRepo) tick() time.Time {
	m.now = m.now.Add(time.Minute)
	return m.now
}

func (m *memRepo) addUser(companyID uuid.UUID, name, email string) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := domain.User{ID: uuid.New(), CompanyID: companyID, Name: name, Email: email}
	m.users[u.ID] = u
	return u
}

func (m *memRepo) recordsFor(leadID uuid.UUID, typ txdomain.Type) []txdomain.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]txdomain.Record, 0)
	for _, r := range m.records {
		if r.LeadID == leadID && (typ == "" || r.Type == typ) {
			out = append(out, r)
		}
	}
	return out
}

func (m *memRepo) active(companyID, id uuid.UUID) (*domain.Lead, error) {
	l, ok := m.leads[id]
	if !ok || l.CompanyID != companyID || l.DeletedAt != nil {
		return nil, domain.ErrLeadNotFound
	}
	return l, nil
}

func (m *memRepo) Create(_ context.Context, lead domain.Lead, rec txdomain.Record) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	lead.StageChangedAt, lead.CreatedAt, lead.UpdatedAt = now, now, now
	m.leads[lead.ID] = &lead
	m.records = append(m.records, rec)
	return lead, nil
}

func (m *memRepo) Get(_ context.Context, companyID, id uuid.UUID) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, err := m.active(companyID, id)
	if err != nil {
		return domain.Lead{}, err
	}
	return *l, nil
}

func (m *memRepo) List(_ context.Context, p repository.ListParams) ([]domain.Lead, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Lead, 0)
	for _, l := range m.leads {
		if l.CompanyID != p.CompanyID || l.DeletedAt != nil {
			continue
		}
		if p.StageID != nil && l.StageID != *p.StageID {
			continue
		}
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (m *memRepo) Search(_ context.Context, companyID uuid.UUID, q string, limit int) ([]domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Lead, 0)
	for _, l := range m.leads {
		if l.CompanyID == companyID && l.DeletedAt == nil && strings.Contains(strings.ToLower(l.FirstName), strings.ToLower(q)) {
			out = append(out, *l)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) FindDuplicate(_ context.Context, key repository.DuplicateKey) (domain.Lead, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.leads {
		if l.CompanyID == key.CompanyID && l.DeletedAt == nil && l.FirstName == key.FirstName &&
			sameString(l.LastName, key.LastName) && sameString(l.Email, key.Email) && sameString(l.Phone, key.Phone) {
			return *l, true, nil
		}
	}
	return domain.Lead{}, false, nil
}

func (m *memRepo) GetUser(_ context.Context, companyID, userID uuid.UUID) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok || u.CompanyID != companyID {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *memRepo) Update(_ context.Context, companyID, id uuid.UUID, p repository.UpdateParams) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, err := m.active(companyID, id)
	if err != nil {
		return domain.Lead{}, err
	}
	if p.FirstName != nil {
		l.FirstName = *p.FirstName
	}
	if p.Email != nil {
		l.Email = p.Email
	}
	if p.Phone != nil {
		l.Phone = p.Phone
	}
	if p.Priority != nil {
		l.Priority = *p.Priority
	}
	l.UpdatedAt = m.tick()
	return *l, nil
}

// mutate mirrors the SQL repository: build sees the current lead and the
// change is applied only when it returns ok.
func (m *memRepo) mutate(companyID, id uuid.UUID, build repository.RecordFunc, apply func(*domain.Lead, time.Time)) (domain.Lead, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, err := m.active(companyID, id)
	if err != nil {
		return domain.Lead{}, false, err
	}
	rec, ok := build(*l)
	if !ok {
		return *l, false, nil
	}
	now := m.tick()
	if apply != nil {
		apply(l, now)
		l.UpdatedAt = now
	}
	m.records = append(m.records, rec)
	return *l, true, nil
}

func (m *memRepo) MoveToStage(_ context.Context, companyID, id, stageID uuid.UUID, build repository.RecordFunc) (domain.Lead, bool, error) {
	return m.mutate(companyID, id, build, func(l *domain.Lead, now time.Time) {
		l.StageID = stageID
		l.StageChangedAt = now
	})
}

func (m *memRepo) Assign(_ context.Context, companyID, id uuid.UUID, userID *uuid.UUID, build repository.RecordFunc) (domain.Lead, bool, error) {
	return m.mutate(companyID, id, build, func(l *domain.Lead, _ time.Time) {
		l.AssignedTo = userID
	})
}

func (m *memRepo) SetQualification(_ context.Context, companyID, id uuid.UUID, qualified bool, by *uuid.UUID, build repository.RecordFunc) (domain.Lead, bool, error) {
	return m.mutate(companyID, id, build, func(l *domain.Lead, now time.Time) {
		l.IsQualified = &qualified
		l.QualifiedAt = &now
		l.QualifiedBy = by
		l.Status = domain.StatusQualified
		if !qualified {
			l.Status = domain.StatusUnqualified
		}
	})
}

func (m *memRepo) SetStatus(_ context.Context, companyID, id uuid.UUID, status domain.Status, build repository.RecordFunc) (domain.Lead, bool, error) {
	return m.mutate(companyID, id, build, func(l *domain.Lead, _ time.Time) {
		l.Status = status
	})
}

func (m *memRepo) TouchContact(_ context.Context, companyID, id uuid.UUID, build repository.RecordFunc) (domain.Lead, bool, error) {
	return m.mutate(companyID, id, build, func(l *domain.Lead, now time.Time) {
		l.LastContactAt = &now
		if l.Status == domain.StatusNew {
			l.Status = domain.StatusContacted
		}
	})
}

func (m *memRepo) AppendEntry(_ context.Context, companyID, id uuid.UUID, build repository.RecordFunc) (domain.Lead, bool, error) {
	return m.mutate(companyID, id, build, nil)
}

func (m *memRepo) AddTags(_ context.Context, companyID, id uuid.UUID, tags []string) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, err := m.active(companyID, id)
	if err != nil {
		return domain.Lead{}, err
	}
	for _, t := range tags {
		if !contains(l.Tags, t) {
			l.Tags = append(l.Tags, t)
		}
	}
	return *l, nil
}

func (m *memRepo) RemoveTags(_ context.Context, companyID, id uuid.UUID, tags []string) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, err := m.active(companyID, id)
	if err != nil {
		return domain.Lead{}, err
	}
	kept := make([]string, 0, len(l.Tags))
	for _, t := range l.Tags {
		if !contains(tags, t) {
			kept = append(kept, t)
		}
	}
	l.Tags = kept
	return *l, nil
}

func (m *memRepo) SoftDelete(_ context.Context, companyID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, err := m.active(companyID, id)
	if err != nil {
		return err
	}
	now := m.tick()
	l.DeletedAt = &now
	return nil
}

func (m *memRepo) Restore(_ context.Context, companyID, id uuid.UUID) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok || l.CompanyID != companyID {
		return domain.Lead{}, domain.ErrLeadNotFound
	}
	if l.DeletedAt == nil {
		return domain.Lead{}, domain.ErrLeadNotDeleted
	}
	l.DeletedAt = nil
	return *l, nil
}

// stubFunnels serves one company's funnels and stages.
type stubFunnels struct {
	funnels map[uuid.UUID]funnels.Funnel
	stages  []funnels.Stage
}

func newStubFunnels() *stubFunnels {
	return &stubFunnels{funnels: map[uuid.UUID]funnels.Funnel{}}
}

// addFunnel creates a funnel whose first stage is the entry stage.
func (f *stubFunnels) addFunnel(companyID uuid.UUID, names ...string) (funnels.Funnel, []funnels.Stage) {
	fn := funnels.Funnel{ID: uuid.New(), CompanyID: companyID, Name: "Sales", Type: funnels.FunnelTypeFunnel, IsActive: true}
	f.funnels[fn.ID] = fn
	stages := make([]funnels.Stage, len(names))
	for i, n := range names {
		typ := funnels.StageTypeNormal
		if i == 0 {
			typ = funnels.StageTypeEntry
		}
		stages[i] = funnels.Stage{ID: uuid.New(), FunnelID: fn.ID, Name: n, Order: i + 1, Type: typ, IsActive: true}
	}
	f.stages = append(f.stages, stages...)
	return fn, stages
}

func (f *stubFunnels) GetFunnel(_ context.Context, companyID, id uuid.UUID, _ bool) (funnels.Funnel, error) {
	fn, ok := f.funnels[id]
	if !ok || fn.CompanyID != companyID {
		return funnels.Funnel{}, funnels.ErrFunnelNotFound
	}
	return fn, nil
}

func (f *stubFunnels) ListStages(_ context.Context, funnelID uuid.UUID, includeDeleted bool) ([]funnels.Stage, error) {
	out := make([]funnels.Stage, 0)
	for _, s := range f.stages {
		if s.FunnelID == funnelID && (includeDeleted || s.DeletedAt == nil) {
			out = append(out, s)
		}
	}
	return out, nil
}

// recordingBus keeps published events instead of dispatching them.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) named(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.Event, 0)
	for _, e := range b.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
