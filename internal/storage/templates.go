package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"budgetbook/internal/core"
)

// GetTemplate returns the singleton template, or nil if it was never created.
func (s *Store) GetTemplate(ctx context.Context) (*core.Template, error) {
	var created time.Time
	err := s.db.QueryRowContext(ctx, `SELECT created_at FROM template WHERE id = 1`).Scan(&created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	tpl := &core.Template{Income: []core.IncomeItem{}, Budget: []core.BudgetItem{}}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, name, value, plan, actual, category_id, modified_at
		FROM template_items ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list template items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, name         string
			kind             ItemKind
			value, plan, act float64
			categoryID       int64
			modified         time.Time
		)
		if err := rows.Scan(&id, &kind, &name, &value, &plan, &act, &categoryID, &modified); err != nil {
			return nil, fmt.Errorf("scan template item: %w", err)
		}
		if kind == KindIncome {
			tpl.Income = append(tpl.Income, core.IncomeItem{ID: id, Name: name, Value: value, CategoryID: categoryID, Date: modified})
		} else {
			tpl.Budget = append(tpl.Budget, core.BudgetItem{ID: id, Name: name, Plan: plan, Actual: act, CategoryID: categoryID, Date: modified})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate template items: %w", err)
	}
	return tpl, nil
}

// AppendTemplateIncome adds an income line to the template, creating the
// singleton lazily on first write.
func (s *Store) AppendTemplateIncome(ctx context.Context, it core.IncomeItem) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureTemplate(ctx, tx); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO template_items (id, kind, name, value, category_id, modified_at)
			VALUES (?, 'income', ?, ?, ?, ?)`,
			it.ID, it.Name, it.Value, it.CategoryID, it.Date)
		if err != nil {
			return fmt.Errorf("append template income: %w", err)
		}
		return nil
	})
}

// AppendTemplateBudget adds a budget line to the template.
func (s *Store) AppendTemplateBudget(ctx context.Context, it core.BudgetItem) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureTemplate(ctx, tx); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO template_items (id, kind, name, plan, actual, category_id, modified_at)
			VALUES (?, 'budget', ?, ?, ?, ?, ?)`,
			it.ID, it.Name, it.Plan, it.Actual, it.CategoryID, it.Date)
		if err != nil {
			return fmt.Errorf("append template budget: %w", err)
		}
		return nil
	})
}

func ensureTemplate(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO template (id, created_at) VALUES (1, ?)
		ON CONFLICT (id) DO NOTHING`, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("ensure template singleton: %w", err)
	}
	return nil
}

// UpdateTemplateIncome overwrites a template income line by id. Missing items
// are silently ignored.
func (s *Store) UpdateTemplateIncome(ctx context.Context, itemID, name string, value float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE template_items SET name = ?, value = ?
		WHERE id = ? AND kind = 'income'`,
		name, value, itemID)
	if err != nil {
		return fmt.Errorf("update template income: %w", err)
	}
	return nil
}

// UpdateTemplateBudget overwrites a template budget line by id.
func (s *Store) UpdateTemplateBudget(ctx context.Context, itemID, name string, plan, actual float64, categoryID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE template_items SET name = ?, plan = ?, actual = ?, category_id = ?
		WHERE id = ? AND kind = 'budget'`,
		name, plan, actual, categoryID, itemID)
	if err != nil {
		return fmt.Errorf("update template budget: %w", err)
	}
	return nil
}

// RemoveTemplateItem deletes a template line by id and kind.
func (s *Store) RemoveTemplateItem(ctx context.Context, itemID string, kind ItemKind) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM template_items WHERE id = ? AND kind = ?`, itemID, kind)
	if err != nil {
		return fmt.Errorf("remove template %s item: %w", kind, err)
	}
	return nil
}
