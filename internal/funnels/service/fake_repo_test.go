package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"crm_backend/internal/funnels/domain"
	"crm_backend/internal/funnels/repository"

	"github.com/google/uuid"
)

// memRepo is an in-memory Repository that follows the same ordering rules as
// the PostgreSQL implementation.
type memRepo struct {
	mu      sync.Mutex
	now     time.Time
	funnels map[uuid.UUID]*domain.Funnel
	stages  map[uuid.UUID]*domain.Stage
	leads   []repository.BoardLead
}

func newMemRepo() *memRepo {
	return &memRepo{
		now:     time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		funnels: map[uuid.UUID]*domain.Funnel{},
		stages:  map[uuid.UUID]*domain.Stage{},
	}
}

func (m *memRepo) tick() time.Time {
	m.now = m.now.Add(time.Minute)
	return m.now
}

func (m *memRepo) live(funnelID uuid.UUID) []*domain.Stage {
	out := make([]*domain.Stage, 0)
	for _, s := range m.stages {
		if s.FunnelID == funnelID && s.DeletedAt == nil {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (m *memRepo) maxOrder(funnelID uuid.UUID) int {
	highest := 0
	for _, s := range m.live(funnelID) {
		if s.Order > highest {
			highest = s.Order
		}
	}
	return highest
}

func (m *memRepo) shift(funnelID uuid.UUID, sh domain.Shift) {
	for _, s := range m.live(funnelID) {
		if sh.Contains(s.Order) {
			s.Order += sh.Delta
		}
	}
}

func (m *memRepo) activeFunnel(id uuid.UUID) (*domain.Funnel, error) {
	f, ok := m.funnels[id]
	if !ok {
		return nil, domain.ErrFunnelNotFound
	}
	if f.DeletedAt != nil {
		return nil, domain.ErrFunnelDeleted
	}
	return f, nil
}

func (m *memRepo) CreateFunnel(_ context.Context, f domain.Funnel, stages []domain.Stage) (domain.Funnel, []domain.Stage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = uuid.New()
	f.CreatedAt = m.tick()
	m.funnels[f.ID] = &f
	out := make([]domain.Stage, 0, len(stages))
	for _, s := range stages {
		s.ID = uuid.New()
		s.FunnelID = f.ID
		stored := s
		m.stages[s.ID] = &stored
		out = append(out, s)
	}
	return f, out, nil
}

func (m *memRepo) GetFunnel(_ context.Context, companyID, id uuid.UUID, includeDeleted bool) (domain.Funnel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.funnels[id]
	if !ok || f.CompanyID != companyID || (!includeDeleted && f.DeletedAt != nil) {
		return domain.Funnel{}, domain.ErrFunnelNotFound
	}
	return *f, nil
}

func (m *memRepo) ListFunnels(_ context.Context, companyID uuid.UUID, includeDeleted bool) ([]domain.Funnel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Funnel, 0)
	for _, f := range m.funnels {
		if f.CompanyID == companyID && (includeDeleted || f.DeletedAt == nil) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *memRepo) UpdateFunnel(_ context.Context, companyID, id uuid.UUID, p repository.UpdateFunnelParams) (domain.Funnel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.funnels[id]
	if !ok || f.CompanyID != companyID || f.DeletedAt != nil {
		return domain.Funnel{}, domain.ErrFunnelNotFound
	}
	if p.Name != nil {
		f.Name = *p.Name
	}
	return *f, nil
}

func (m *memRepo) DeleteFunnelCascade(_ context.Context, companyID, id uuid.UUID) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.funnels[id]
	if !ok || f.CompanyID != companyID || f.DeletedAt != nil {
		return time.Time{}, domain.ErrFunnelNotFound
	}
	at := m.tick()
	f.DeletedAt = &at
	for _, s := range m.live(id) {
		stamp := at
		s.DeletedAt = &stamp
	}
	return at, nil
}

func (m *memRepo) RestoreFunnelCascade(_ context.Context, companyID, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.funnels[id]
	if !ok || f.CompanyID != companyID {
		return 0, domain.ErrFunnelNotFound
	}
	if f.DeletedAt == nil {
		return 0, domain.ErrFunnelNotDeleted
	}
	at := *f.DeletedAt
	f.DeletedAt = nil
	restored := 0
	for _, s := range m.stages {
		if s.FunnelID == id && s.DeletedAt != nil && s.DeletedAt.Equal(at) {
			s.DeletedAt = nil
			restored++
		}
	}
	return restored, nil
}

func (m *memRepo) DuplicateFunnel(_ context.Context, companyID, id uuid.UUID, createdBy *uuid.UUID) (domain.Funnel, []domain.Stage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.funnels[id]
	if !ok || src.CompanyID != companyID || src.DeletedAt != nil {
		return domain.Funnel{}, nil, domain.ErrFunnelNotFound
	}
	cp := *src
	cp.ID = uuid.New()
	cp.Name = domain.CopyName(src.Name)
	cp.CreatedBy = createdBy
	m.funnels[cp.ID] = &cp

	out := make([]domain.Stage, 0)
	for i, s := range m.live(id) {
		c := *s
		c.ID = uuid.New()
		c.FunnelID = cp.ID
		c.Order = i + 1
		m.stages[c.ID] = &c
		out = append(out, c)
	}
	return cp, out, nil
}

func (m *memRepo) ListStages(_ context.Context, funnelID uuid.UUID, includeDeleted bool) ([]domain.Stage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Stage, 0)
	for _, s := range m.live(funnelID) {
		out = append(out, *s)
	}
	if includeDeleted {
		for _, s := range m.stages {
			if s.FunnelID == funnelID && s.DeletedAt != nil {
				out = append(out, *s)
			}
		}
	}
	return out, nil
}

func (m *memRepo) GetStage(_ context.Context, funnelID, stageID uuid.UUID) (domain.Stage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stages[stageID]
	if !ok || s.FunnelID != funnelID {
		return domain.Stage{}, domain.ErrStageNotFound
	}
	return *s, nil
}

func (m *memRepo) CreateStage(_ context.Context, s domain.Stage, at *int) (domain.Stage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.activeFunnel(s.FunnelID); err != nil {
		return domain.Stage{}, err
	}
	highest := m.maxOrder(s.FunnelID)
	s.Order = highest + 1
	if at != nil {
		if err := domain.ValidateInsert(*at, highest); err != nil {
			return domain.Stage{}, err
		}
		if sh, ok := domain.PlanInsert(*at, highest); ok {
			m.shift(s.FunnelID, sh)
		}
		s.Order = *at
	}
	s.ID = uuid.New()
	stored := s
	m.stages[s.ID] = &stored
	return s, nil
}

func (m *memRepo) UpdateStage(_ context.Context, funnelID, stageID uuid.UUID, p repository.UpdateStageParams) (domain.Stage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stages[stageID]
	if !ok || s.FunnelID != funnelID || s.DeletedAt != nil {
		return domain.Stage{}, domain.ErrStageNotFound
	}
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Settings != nil {
		s.Settings = *p.Settings
	}
	return *s, nil
}

func (m *memRepo) MoveStage(_ context.Context, funnelID, stageID uuid.UUID, newOrder int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.activeFunnel(funnelID); err != nil {
		return err
	}
	s, ok := m.stages[stageID]
	if !ok || s.FunnelID != funnelID || s.DeletedAt != nil {
		return domain.ErrStageNotFound
	}
	if err := domain.ValidateMove(newOrder, m.maxOrder(funnelID)); err != nil {
		return err
	}
	sh, ok := domain.PlanMove(s.Order, newOrder)
	if !ok {
		return nil
	}
	m.shift(funnelID, sh)
	s.Order = newOrder
	return nil
}

func (m *memRepo) SoftDeleteStage(_ context.Context, funnelID, stageID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stages[stageID]
	if !ok || s.FunnelID != funnelID || s.DeletedAt != nil {
		return domain.ErrStageNotFound
	}
	at := m.tick()
	s.DeletedAt = &at
	return nil
}

func (m *memRepo) HardDeleteStage(_ context.Context, funnelID, stageID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stages[stageID]
	if !ok || s.FunnelID != funnelID {
		return domain.ErrStageNotFound
	}
	for _, l := range m.leads {
		if l.StageID == stageID {
			return domain.ErrStageInUse
		}
	}
	delete(m.stages, stageID)

	live := m.live(funnelID)
	orders := make([]int, len(live))
	for i, st := range live {
		orders[i] = st.Order
	}
	for i, o := range domain.Compact(orders) {
		live[i].Order = o
	}
	return nil
}

func (m *memRepo) RestoreStage(_ context.Context, funnelID, stageID uuid.UUID) (domain.Stage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.activeFunnel(funnelID); err != nil {
		return domain.Stage{}, err
	}
	s, ok := m.stages[stageID]
	if !ok || s.FunnelID != funnelID {
		return domain.Stage{}, domain.ErrStageNotFound
	}
	if s.DeletedAt == nil {
		return domain.Stage{}, domain.ErrStageNotDeleted
	}
	s.Order = m.maxOrder(funnelID) + 1
	s.DeletedAt = nil
	return *s, nil
}

func (m *memRepo) ListBoardLeads(_ context.Context, _, funnelID uuid.UUID) ([]repository.BoardLead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]repository.BoardLead, 0)
	for _, l := range m.leads {
		if s, ok := m.stages[l.StageID]; ok && s.FunnelID == funnelID && s.DeletedAt == nil {
			out = append(out, l)
		}
	}
	return out, nil
}

var _ repository.Repository = (*memRepo)(nil)
