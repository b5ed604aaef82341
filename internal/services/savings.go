package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgetbook/internal/core"
	"budgetbook/internal/storage"
)

// SavingService manages savings goals and their contributor and spending
// sub-lists.
type SavingService struct {
	store *storage.Store
}

func NewSavingService(store *storage.Store) *SavingService {
	return &SavingService{store: store}
}

// CreateSavingParams carries the caller-supplied saving fields.
type CreateSavingParams struct {
	Name    string
	Goal    float64
	Initial float64
	Comment string
}

// Create stores a new savings goal with empty contributor and spending lists.
func (s *SavingService) Create(ctx context.Context, p CreateSavingParams) (core.Saving, error) {
	sv := core.Saving{
		ID:           uuid.NewString(),
		Name:         p.Name,
		Goal:         p.Goal,
		Initial:      p.Initial,
		Comment:      p.Comment,
		Contributors: []core.Contributor{},
		Spendings:    []core.Spending{},
		Date:         time.Now().UTC(),
	}
	if err := s.store.InsertSaving(ctx, sv); err != nil {
		return core.Saving{}, fmt.Errorf("create saving: %w", err)
	}
	return sv, nil
}

// List returns all savings with their sub-lists.
func (s *SavingService) List(ctx context.Context) ([]core.Saving, error) {
	return s.store.ListSavings(ctx)
}

// Update overwrites a saving's own fields. The sub-lists are untouched.
func (s *SavingService) Update(ctx context.Context, id string, p CreateSavingParams) (*core.Saving, error) {
	sv, err := s.store.UpdateSaving(ctx, id, p.Name, p.Goal, p.Initial, p.Comment)
	if err != nil {
		return nil, fmt.Errorf("update saving: %w", err)
	}
	return sv, nil
}

// Delete removes a saving and its sub-lists. Months referenced by its
// contributors are not touched. A missing id returns (nil, nil).
func (s *SavingService) Delete(ctx context.Context, id string) (*core.Saving, error) {
	sv, err := s.store.DeleteSaving(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete saving: %w", err)
	}
	return sv, nil
}

// AddContributor appends a contributor to a saving.
func (s *SavingService) AddContributor(ctx context.Context, savingID string, c core.Contributor) (core.Contributor, error) {
	c.ID = uuid.NewString()
	c.Date = time.Now().UTC()
	if err := s.store.AddContributor(ctx, savingID, c); err != nil {
		return core.Contributor{}, err
	}
	return c, nil
}

// UpdateContributor patches plan and actual. The contributor is addressed by
// its own id across all savings, not by the saving in the URL; kept for
// compatibility with existing clients.
func (s *SavingService) UpdateContributor(ctx context.Context, contributorID string, plan, actual float64) error {
	return s.store.UpdateContributor(ctx, contributorID, plan, actual)
}

// RemoveContributor deletes a contributor from a saving.
func (s *SavingService) RemoveContributor(ctx context.Context, savingID, contributorID string) error {
	return s.store.RemoveContributor(ctx, savingID, contributorID)
}

// AddSpending appends a spending entry to a saving.
func (s *SavingService) AddSpending(ctx context.Context, savingID string, sp core.Spending) (core.Spending, error) {
	sp.ID = uuid.NewString()
	sp.Date = time.Now().UTC()
	if err := s.store.AddSpending(ctx, savingID, sp); err != nil {
		return core.Spending{}, err
	}
	return sp, nil
}

// UpdateSpending patches a spending's amount, addressed by spending id alone.
func (s *SavingService) UpdateSpending(ctx context.Context, spendingID string, amount float64) error {
	return s.store.UpdateSpending(ctx, spendingID, amount)
}

// RemoveSpending deletes a spending entry from a saving.
func (s *SavingService) RemoveSpending(ctx context.Context, savingID, spendingID string) error {
	return s.store.RemoveSpending(ctx, savingID, spendingID)
}
