package http

import (
	"errors"

	"budgetbook/internal/core"
)

var (
	errPlanRequired   = errors.New("plan is required")
	errActualRequired = errors.New("actual is required")
)

// lineItemRequest is the shared payload for month and template line items.
// The two shapes travel over the same routes; the presence of "value" is the
// explicit discriminator between income and budget items.
type lineItemRequest struct {
	Name       string   `json:"name"`
	Value      *float64 `json:"value,omitempty"`
	Plan       *float64 `json:"plan,omitempty"`
	Actual     *float64 `json:"actual,omitempty"`
	CategoryID int64    `json:"categoryId"`
}

func (r lineItemRequest) isIncome() bool {
	return r.Value != nil
}

// validate classifies the payload and runs the matching field schema,
// returning the first failure.
func (r lineItemRequest) validate() error {
	if r.isIncome() {
		return r.incomeItem().Validate()
	}
	if r.Plan == nil {
		return errPlanRequired
	}
	if r.Actual == nil {
		return errActualRequired
	}
	return r.budgetItem().Validate()
}

func (r lineItemRequest) incomeItem() core.IncomeItem {
	it := core.IncomeItem{Name: r.Name, CategoryID: r.CategoryID}
	if r.Value != nil {
		it.Value = *r.Value
	}
	return it
}

func (r lineItemRequest) budgetItem() core.BudgetItem {
	it := core.BudgetItem{Name: r.Name, CategoryID: r.CategoryID}
	if r.Plan != nil {
		it.Plan = *r.Plan
	}
	if r.Actual != nil {
		it.Actual = *r.Actual
	}
	return it
}
