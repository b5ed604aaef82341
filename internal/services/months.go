package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budgetbook/internal/core"
	"budgetbook/internal/events"
	"budgetbook/internal/storage"
)

// MonthService owns the month lifecycle: seeding new months from the
// template, default propagation, closing and cascade deletion.
type MonthService struct {
	store     *storage.Store
	publisher *events.Publisher // nil disables event publishing
}

func NewMonthService(store *storage.Store, publisher *events.Publisher) *MonthService {
	return &MonthService{store: store, publisher: publisher}
}

// CreateMonthParams carries the caller-supplied month header fields.
type CreateMonthParams struct {
	Name               string
	Comment            string
	PredecessorMonthID string
	Default            bool
}

// Create builds a month seeded from the current template snapshot. The copy
// is by value with fresh item ids; later template edits never touch it. When
// Default is set, every other month loses the flag in the same transaction.
func (s *MonthService) Create(ctx context.Context, p CreateMonthParams) (core.Month, error) {
	now := time.Now().UTC()
	m := core.Month{
		ID:                 uuid.NewString(),
		Name:               p.Name,
		URL:                core.Slugify(p.Name),
		Default:            p.Default,
		Comment:            p.Comment,
		PredecessorMonthID: p.PredecessorMonthID,
		Income:             []core.IncomeItem{},
		Budget:             []core.BudgetItem{},
		Date:               now,
	}

	tpl, err := s.store.GetTemplate(ctx)
	if err != nil {
		return core.Month{}, fmt.Errorf("read template: %w", err)
	}
	if tpl != nil {
		for _, it := range tpl.Income {
			m.Income = append(m.Income, core.IncomeItem{
				ID:         uuid.NewString(),
				Name:       it.Name,
				Value:      it.Value,
				CategoryID: it.CategoryID,
				Date:       now,
			})
		}
		for _, it := range tpl.Budget {
			m.Budget = append(m.Budget, core.BudgetItem{
				ID:         uuid.NewString(),
				Name:       it.Name,
				Plan:       it.Plan,
				Actual:     it.Actual,
				CategoryID: it.CategoryID,
				Date:       now,
			})
		}
	}

	if err := s.store.InsertMonth(ctx, m, p.Default); err != nil {
		return core.Month{}, fmt.Errorf("create month: %w", err)
	}

	s.publish(ctx, events.NewMonthEvent(events.MonthCreated, m.ID, m.Name))
	return m, nil
}

// List returns all months in the store's natural order.
func (s *MonthService) List(ctx context.Context) ([]core.Month, error) {
	return s.store.ListMonths(ctx)
}

// GetBySlug returns the first month matching the URL slug, or nil.
func (s *MonthService) GetBySlug(ctx context.Context, slug string) (*core.Month, error) {
	return s.store.GetMonthBySlug(ctx, slug)
}

// SetDefault makes the given month the single default.
func (s *MonthService) SetDefault(ctx context.Context, id string) error {
	if err := s.store.SetDefaultMonth(ctx, id); err != nil {
		return fmt.Errorf("set default month: %w", err)
	}
	return nil
}

// ToggleClose sets the closed flag, records the caller's cumulative savings
// snapshot and stamps closedAt, for closing and reopening alike.
func (s *MonthService) ToggleClose(ctx context.Context, id string, closed bool, sumAllSavings float64) (*core.Month, error) {
	m, err := s.store.ToggleMonthClose(ctx, id, closed, sumAllSavings)
	if err != nil {
		return nil, fmt.Errorf("toggle close: %w", err)
	}
	if m != nil && closed {
		s.publish(ctx, events.NewMonthEvent(events.MonthClosed, m.ID, m.Name))
	}
	return m, nil
}

// UpdateBalance overwrites balance, opening and comment.
func (s *MonthService) UpdateBalance(ctx context.Context, id string, balance, opening float64, comment string) (*core.Month, error) {
	m, err := s.store.UpdateMonthBalance(ctx, id, balance, opening, comment)
	if err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}
	return m, nil
}

// Update overwrites the month header fields.
func (s *MonthService) Update(ctx context.Context, id string, p CreateMonthParams) (*core.Month, error) {
	m, err := s.store.UpdateMonthFields(ctx, id, p.Name, p.Comment, p.PredecessorMonthID, p.Default)
	if err != nil {
		return nil, fmt.Errorf("update month: %w", err)
	}
	return m, nil
}

// Delete removes a month, cascades contributor removal across all savings and
// promotes the most recently created remaining month when the default was
// deleted. A missing id returns (nil, nil).
func (s *MonthService) Delete(ctx context.Context, id string) (*core.Month, error) {
	m, err := s.store.DeleteMonth(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete month: %w", err)
	}
	if m != nil {
		s.publish(ctx, events.NewMonthEvent(events.MonthDeleted, m.ID, m.Name))
	}
	return m, nil
}

// AddIncome appends an income line to a month.
func (s *MonthService) AddIncome(ctx context.Context, monthID string, it core.IncomeItem) (core.IncomeItem, error) {
	it.ID = uuid.NewString()
	it.Date = time.Now().UTC()
	if err := s.store.AddIncomeItem(ctx, monthID, it); err != nil {
		return core.IncomeItem{}, err
	}
	return it, nil
}

// AddBudget appends a budget line to a month.
func (s *MonthService) AddBudget(ctx context.Context, monthID string, it core.BudgetItem) (core.BudgetItem, error) {
	it.ID = uuid.NewString()
	it.Date = time.Now().UTC()
	if err := s.store.AddBudgetItem(ctx, monthID, it); err != nil {
		return core.BudgetItem{}, err
	}
	return it, nil
}

// UpdateIncome patches an income line's name and value.
func (s *MonthService) UpdateIncome(ctx context.Context, monthID, itemID string, it core.IncomeItem) error {
	return s.store.UpdateIncomeItem(ctx, monthID, itemID, it.Name, it.Value)
}

// UpdateBudget patches a budget line, restamping it only when a nonzero plan
// accompanies a changed actual.
func (s *MonthService) UpdateBudget(ctx context.Context, monthID, itemID string, it core.BudgetItem) error {
	return s.store.UpdateBudgetItem(ctx, monthID, itemID, it.Name, it.Plan, it.Actual, it.CategoryID)
}

// RemoveIncome deletes an income line from a month.
func (s *MonthService) RemoveIncome(ctx context.Context, monthID, itemID string) error {
	return s.store.RemoveMonthItem(ctx, monthID, itemID, storage.KindIncome)
}

// RemoveBudget deletes a budget line from a month.
func (s *MonthService) RemoveBudget(ctx context.Context, monthID, itemID string) error {
	return s.store.RemoveMonthItem(ctx, monthID, itemID, storage.KindBudget)
}

// publish emits a lifecycle event if a publisher is wired. Publish failures
// are logged and swallowed: the store write already succeeded.
func (s *MonthService) publish(ctx context.Context, e events.MonthEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishMonthEvent(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish month event",
			"type", e.Type, "month_id", e.MonthID, "error", err)
	}
}
