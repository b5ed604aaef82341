package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"budgetbook/internal/core"
)

const savingColumns = `id, name, goal, initial, comment, planned, actual, modified_at`

// InsertSaving stores a new savings goal with empty contributor and spending
// lists.
func (s *Store) InsertSaving(ctx context.Context, sv core.Saving) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO savings (id, name, goal, initial, comment, planned, actual, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sv.ID, sv.Name, sv.Goal, sv.Initial, sv.Comment, sv.Planned, sv.Actual, sv.Date)
	if err != nil {
		return fmt.Errorf("insert saving: %w", err)
	}
	return nil
}

// ListSavings returns all savings with their contributors and spendings.
func (s *Store) ListSavings(ctx context.Context) ([]core.Saving, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+savingColumns+` FROM savings ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list savings: %w", err)
	}
	defer rows.Close()

	savings := []core.Saving{}
	index := map[string]int{}
	for rows.Next() {
		sv, err := scanSaving(rows)
		if err != nil {
			return nil, err
		}
		index[sv.ID] = len(savings)
		savings = append(savings, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate savings: %w", err)
	}

	cRows, err := s.db.QueryContext(ctx, `
		SELECT saving_id, id, month_id, plan, actual, modified_at
		FROM contributors ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list contributors: %w", err)
	}
	defer cRows.Close()
	for cRows.Next() {
		var (
			savingID string
			c        core.Contributor
		)
		if err := cRows.Scan(&savingID, &c.ID, &c.MonthID, &c.Plan, &c.Actual, &c.Date); err != nil {
			return nil, fmt.Errorf("scan contributor: %w", err)
		}
		if i, ok := index[savingID]; ok {
			savings[i].Contributors = append(savings[i].Contributors, c)
		}
	}
	if err := cRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contributors: %w", err)
	}

	spRows, err := s.db.QueryContext(ctx, `
		SELECT saving_id, id, month_id, amount, modified_at
		FROM spendings ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list spendings: %w", err)
	}
	defer spRows.Close()
	for spRows.Next() {
		var (
			savingID string
			sp       core.Spending
		)
		if err := spRows.Scan(&savingID, &sp.ID, &sp.MonthID, &sp.Amount, &sp.Date); err != nil {
			return nil, fmt.Errorf("scan spending: %w", err)
		}
		if i, ok := index[savingID]; ok {
			savings[i].Spendings = append(savings[i].Spendings, sp)
		}
	}
	if err := spRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spendings: %w", err)
	}

	return savings, nil
}

// GetSaving returns a single saving with its sub-lists, or nil if absent.
func (s *Store) GetSaving(ctx context.Context, id string) (*core.Saving, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+savingColumns+` FROM savings WHERE id = ?`, id)
	sv, err := scanSaving(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cRows, err := s.db.QueryContext(ctx, `
		SELECT id, month_id, plan, actual, modified_at
		FROM contributors WHERE saving_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("load contributors: %w", err)
	}
	defer cRows.Close()
	for cRows.Next() {
		var c core.Contributor
		if err := cRows.Scan(&c.ID, &c.MonthID, &c.Plan, &c.Actual, &c.Date); err != nil {
			return nil, fmt.Errorf("scan contributor: %w", err)
		}
		sv.Contributors = append(sv.Contributors, c)
	}
	if err := cRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contributors: %w", err)
	}

	spRows, err := s.db.QueryContext(ctx, `
		SELECT id, month_id, amount, modified_at
		FROM spendings WHERE saving_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("load spendings: %w", err)
	}
	defer spRows.Close()
	for spRows.Next() {
		var sp core.Spending
		if err := spRows.Scan(&sp.ID, &sp.MonthID, &sp.Amount, &sp.Date); err != nil {
			return nil, fmt.Errorf("scan spending: %w", err)
		}
		sv.Spendings = append(sv.Spendings, sp)
	}
	if err := spRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spendings: %w", err)
	}

	return &sv, nil
}

func scanSaving(r rowScanner) (core.Saving, error) {
	var sv core.Saving
	err := r.Scan(&sv.ID, &sv.Name, &sv.Goal, &sv.Initial, &sv.Comment, &sv.Planned, &sv.Actual, &sv.Date)
	if err == sql.ErrNoRows {
		return sv, err
	}
	if err != nil {
		return sv, fmt.Errorf("scan saving: %w", err)
	}
	sv.Contributors = []core.Contributor{}
	sv.Spendings = []core.Spending{}
	return sv, nil
}

// UpdateSaving overwrites a saving's own fields (not its sub-lists) and
// restamps it. Missing savings are silently ignored.
func (s *Store) UpdateSaving(ctx context.Context, id, name string, goal, initial float64, comment string) (*core.Saving, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE savings SET name = ?, goal = ?, initial = ?, comment = ?, modified_at = ?
		WHERE id = ?`,
		name, goal, initial, comment, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("update saving: %w", err)
	}
	return s.GetSaving(ctx, id)
}

// DeleteSaving removes a saving and its sub-lists. Deleting a missing saving
// returns (nil, nil).
func (s *Store) DeleteSaving(ctx context.Context, id string) (*core.Saving, error) {
	deleted, err := s.GetSaving(ctx, id)
	if err != nil {
		return nil, err
	}
	if deleted == nil {
		return nil, nil
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM contributors WHERE saving_id = ?`, id); err != nil {
			return fmt.Errorf("delete contributors: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM spendings WHERE saving_id = ?`, id); err != nil {
			return fmt.Errorf("delete spendings: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM savings WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete saving: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// AddContributor appends a contributor to a saving. Appending to a missing
// saving is a no-op.
func (s *Store) AddContributor(ctx context.Context, savingID string, c core.Contributor) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contributors (id, saving_id, month_id, plan, actual, modified_at)
		SELECT ?, id, ?, ?, ?, ? FROM savings WHERE id = ?`,
		c.ID, c.MonthID, c.Plan, c.Actual, c.Date, savingID)
	if err != nil {
		return fmt.Errorf("add contributor: %w", err)
	}
	return nil
}

// UpdateContributor patches a contributor's plan and actual, addressed by the
// contributor id alone across all savings.
func (s *Store) UpdateContributor(ctx context.Context, contributorID string, plan, actual float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE contributors SET plan = ?, actual = ?, modified_at = ?
		WHERE id = ?`,
		plan, actual, time.Now().UTC(), contributorID)
	if err != nil {
		return fmt.Errorf("update contributor: %w", err)
	}
	return nil
}

// RemoveContributor deletes a contributor from its owning saving.
func (s *Store) RemoveContributor(ctx context.Context, savingID, contributorID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM contributors WHERE id = ? AND saving_id = ?`, contributorID, savingID)
	if err != nil {
		return fmt.Errorf("remove contributor: %w", err)
	}
	return nil
}

// AddSpending appends a spending entry to a saving.
func (s *Store) AddSpending(ctx context.Context, savingID string, sp core.Spending) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO spendings (id, saving_id, month_id, amount, modified_at)
		SELECT ?, id, ?, ?, ? FROM savings WHERE id = ?`,
		sp.ID, sp.MonthID, sp.Amount, sp.Date, savingID)
	if err != nil {
		return fmt.Errorf("add spending: %w", err)
	}
	return nil
}

// UpdateSpending patches a spending's amount, addressed by spending id alone.
func (s *Store) UpdateSpending(ctx context.Context, spendingID string, amount float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE spendings SET amount = ?, modified_at = ?
		WHERE id = ?`,
		amount, time.Now().UTC(), spendingID)
	if err != nil {
		return fmt.Errorf("update spending: %w", err)
	}
	return nil
}

// RemoveSpending deletes a spending entry from its owning saving.
func (s *Store) RemoveSpending(ctx context.Context, savingID, spendingID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM spendings WHERE id = ? AND saving_id = ?`, spendingID, savingID)
	if err != nil {
		return fmt.Errorf("remove spending: %w", err)
	}
	return nil
}
