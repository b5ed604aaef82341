package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// IncomeItem is a single income line inside a Month or the Template.
	IncomeItem struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		Value      float64   `json:"value"`
		CategoryID int64     `json:"categoryId"`
		Date       time.Time `json:"date"`
	}

	// BudgetItem is a planned/actual expense line inside a Month or the Template.
	BudgetItem struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		Plan       float64   `json:"plan"`
		Actual     float64   `json:"actual"`
		CategoryID int64     `json:"categoryId"`
		Date       time.Time `json:"date"`
	}

	// Template is the singleton seed copied into every newly created month.
	// Edits to the template never touch months created earlier.
	Template struct {
		Income []IncomeItem `json:"income"`
		Budget []BudgetItem `json:"budget"`
	}

	Month struct {
		ID                 string       `json:"id"`
		Name               string       `json:"name"`
		URL                string       `json:"url"`
		Default            bool         `json:"default"`
		Closed             bool         `json:"closed"`
		Balance            float64      `json:"balance"`
		Opening            float64      `json:"opening"`
		PredecessorMonthID string       `json:"predecessorMonthId,omitempty"`
		Income             []IncomeItem `json:"income"`
		Budget             []BudgetItem `json:"budget"`
		Comment            string       `json:"comment"`
		SumAllSavings      float64      `json:"sumAllSavings"`
		Date               time.Time    `json:"date"`
		ClosedAt           *time.Time   `json:"closedAt,omitempty"`
	}

	// Contributor links a saving to a month. The month reference is advisory:
	// the store does not enforce it, but deleting a month removes all
	// contributors pointing at it.
	Contributor struct {
		ID      string    `json:"id"`
		MonthID string    `json:"monthId"`
		Plan    float64   `json:"plan"`
		Actual  float64   `json:"actual"`
		Date    time.Time `json:"date"`
	}

	Spending struct {
		ID      string    `json:"id"`
		MonthID string    `json:"monthId"`
		Amount  float64   `json:"amount"`
		Date    time.Time `json:"date"`
	}

	Saving struct {
		ID           string        `json:"id"`
		Name         string        `json:"name"`
		Goal         float64       `json:"goal"`
		Initial      float64       `json:"initial"`
		Comment      string        `json:"comment"`
		Planned      float64       `json:"planned"`
		Actual       float64       `json:"actual"`
		Contributors []Contributor `json:"contributors"`
		Spendings    []Spending    `json:"spendings"`
		Date         time.Time     `json:"date"`
	}
)

var (
	ErrInvalidName      = errors.New("name must be between 1 and 255 characters")
	ErrNegativeValue    = errors.New("value must not be negative")
	ErrNegativePlan     = errors.New("plan must not be negative")
	ErrNegativeActual   = errors.New("actual must not be negative")
	ErrNegativeCategory = errors.New("categoryId must not be negative")
	ErrNegativeBalance  = errors.New("balance must not be negative")
	ErrNegativeOpening  = errors.New("opening must not be negative")
	ErrNegativeGoal     = errors.New("goal must not be negative")
	ErrNegativeInitial  = errors.New("initial must not be negative")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrNegativeSavings  = errors.New("sumAllSavings must not be negative")
	ErrMonthIDRequired  = errors.New("monthId is required")
)

// ValidateName enforces the 1..255 character rule shared by months, savings
// and line items.
func ValidateName(name string) error {
	if len(name) < 1 || len(name) > 255 {
		return ErrInvalidName
	}
	return nil
}

func (i IncomeItem) Validate() error {
	if err := ValidateName(i.Name); err != nil {
		return err
	}
	if i.Value < 0 {
		return ErrNegativeValue
	}
	if i.CategoryID < 0 {
		return ErrNegativeCategory
	}
	return nil
}

func (b BudgetItem) Validate() error {
	if err := ValidateName(b.Name); err != nil {
		return err
	}
	if b.Plan < 0 {
		return ErrNegativePlan
	}
	if b.Actual < 0 {
		return ErrNegativeActual
	}
	if b.CategoryID < 0 {
		return ErrNegativeCategory
	}
	return nil
}

func (s Saving) Validate() error {
	if err := ValidateName(s.Name); err != nil {
		return err
	}
	if s.Goal < 0 {
		return ErrNegativeGoal
	}
	if s.Initial < 0 {
		return ErrNegativeInitial
	}
	return nil
}

func (c Contributor) Validate() error {
	if strings.TrimSpace(c.MonthID) == "" {
		return ErrMonthIDRequired
	}
	if c.Plan < 0 {
		return ErrNegativePlan
	}
	if c.Actual < 0 {
		return ErrNegativeActual
	}
	return nil
}

func (s Spending) Validate() error {
	if strings.TrimSpace(s.MonthID) == "" {
		return ErrMonthIDRequired
	}
	if s.Amount < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Slugify derives a month's URL slug from its name: lowercase, alphanumeric
// runs joined by hyphens, everything else stripped. Slugs need not be unique;
// lookups by slug return the first match.
func Slugify(name string) string {
	var b strings.Builder
	inWord := false
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			inWord = true
		} else if inWord {
			b.WriteByte('-')
			inWord = false
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
