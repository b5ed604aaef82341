package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"budgetbook/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testMonth(id, name string) core.Month {
	return core.Month{
		ID:     id,
		Name:   name,
		URL:    core.Slugify(name),
		Income: []core.IncomeItem{},
		Budget: []core.BudgetItem{},
		Date:   time.Now().UTC(),
	}
}

func TestMonthRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := testMonth("m1", "January 2026")
	m.Comment = "first month"
	m.Income = []core.IncomeItem{{ID: "i1", Name: "Salary", Value: 2500, CategoryID: 1, Date: m.Date}}
	m.Budget = []core.BudgetItem{{ID: "b1", Name: "Rent", Plan: 900, Actual: 0, CategoryID: 2, Date: m.Date}}

	if err := s.InsertMonth(ctx, m, false); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.GetMonth(ctx, "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("expected month, got nil")
	}
	if got.Name != "January 2026" || got.URL != "january-2026" || got.Comment != "first month" {
		t.Fatalf("unexpected month: %+v", got)
	}
	if len(got.Income) != 1 || got.Income[0].Value != 2500 {
		t.Fatalf("unexpected income: %+v", got.Income)
	}
	if len(got.Budget) != 1 || got.Budget[0].Plan != 900 {
		t.Fatalf("unexpected budget: %+v", got.Budget)
	}
	if got.ClosedAt != nil {
		t.Fatalf("closedAt should start nil")
	}

	bySlug, err := s.GetMonthBySlug(ctx, "january-2026")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if bySlug == nil || bySlug.ID != "m1" {
		t.Fatalf("slug lookup failed: %+v", bySlug)
	}
}

func TestGetMonthMissingReturnsNil(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, err := s.GetMonth(ctx, "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil for missing month, got %+v", m)
	}

	m, err = s.GetMonthBySlug(ctx, "nope")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil for missing slug, got %+v", m)
	}
}

func TestSingleDefaultInvariant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.InsertMonth(ctx, testMonth("m1", "Jan"), true); err != nil {
		t.Fatalf("insert m1: %v", err)
	}
	if err := s.InsertMonth(ctx, testMonth("m2", "Feb"), true); err != nil {
		t.Fatalf("insert m2: %v", err)
	}

	months, err := s.ListMonths(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defaults := 0
	for _, m := range months {
		if m.Default {
			defaults++
			if m.ID != "m2" {
				t.Fatalf("expected m2 default, got %s", m.ID)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default, got %d", defaults)
	}

	if err := s.SetDefaultMonth(ctx, "m1"); err != nil {
		t.Fatalf("set default: %v", err)
	}
	m1, _ := s.GetMonth(ctx, "m1")
	m2, _ := s.GetMonth(ctx, "m2")
	if !m1.Default || m2.Default {
		t.Fatalf("default did not move: m1=%v m2=%v", m1.Default, m2.Default)
	}
}

func TestUpdateMonthFieldsKeepsSingleDefault(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.InsertMonth(ctx, testMonth("m1", "Jan"), true); err != nil {
		t.Fatalf("insert m1: %v", err)
	}
	if err := s.InsertMonth(ctx, testMonth("m2", "Feb"), false); err != nil {
		t.Fatalf("insert m2: %v", err)
	}

	got, err := s.UpdateMonthFields(ctx, "m2", "February", "updated", "m1", true)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "February" || got.Comment != "updated" || got.PredecessorMonthID != "m1" || !got.Default {
		t.Fatalf("unexpected month after update: %+v", got)
	}
	m1, _ := s.GetMonth(ctx, "m1")
	if m1.Default {
		t.Fatalf("m1 should have lost the default flag")
	}
}

func TestToggleMonthCloseStampsClosedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.InsertMonth(ctx, testMonth("m1", "Jan"), false); err != nil {
		t.Fatalf("insert: %v", err)
	}

	closed, err := s.ToggleMonthClose(ctx, "m1", true, 1500)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if !closed.Closed || closed.SumAllSavings != 1500 {
		t.Fatalf("unexpected close state: %+v", closed)
	}
	if closed.ClosedAt == nil {
		t.Fatalf("closedAt not stamped on close")
	}

	// Reopening restamps closedAt too.
	reopened, err := s.ToggleMonthClose(ctx, "m1", false, 1500)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Closed {
		t.Fatalf("month still closed after reopen")
	}
	if reopened.ClosedAt == nil {
		t.Fatalf("closedAt cleared on reopen")
	}
}

func TestUpdateBudgetItemTouchOnRecompute(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	m := testMonth("m1", "Jan")
	m.Budget = []core.BudgetItem{{ID: "b1", Name: "Rent", Plan: 900, Actual: 100, CategoryID: 1, Date: old}}
	if err := s.InsertMonth(ctx, m, false); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Zero plan: actual changes but the stamp stays put.
	if err := s.UpdateBudgetItem(ctx, "m1", "b1", "Rent", 0, 200, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.GetMonth(ctx, "m1")
	if !got.Budget[0].Date.Equal(old) {
		t.Fatalf("stamp moved with zero plan: %v", got.Budget[0].Date)
	}

	// Nonzero plan with unchanged actual: stamp stays put.
	if err := s.UpdateBudgetItem(ctx, "m1", "b1", "Rent", 900, 200, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = s.GetMonth(ctx, "m1")
	if !got.Budget[0].Date.Equal(old) {
		t.Fatalf("stamp moved with unchanged actual: %v", got.Budget[0].Date)
	}

	// Nonzero plan and changed actual: stamp refreshed.
	if err := s.UpdateBudgetItem(ctx, "m1", "b1", "Rent", 900, 300, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = s.GetMonth(ctx, "m1")
	if got.Budget[0].Date.Equal(old) {
		t.Fatalf("stamp not refreshed on recompute")
	}
	if got.Budget[0].Actual != 300 {
		t.Fatalf("actual not updated: %v", got.Budget[0].Actual)
	}
}

func TestAddItemToMissingMonthIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.AddIncomeItem(ctx, "nope", core.IncomeItem{ID: "i1", Name: "x", Value: 1, Date: time.Now().UTC()})
	if err != nil {
		t.Fatalf("add to missing month: %v", err)
	}
	months, err := s.ListMonths(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(months) != 0 {
		t.Fatalf("no month should exist, got %d", len(months))
	}
}

func TestDeleteMonthCascadesAndPromotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	jan := testMonth("m-jan", "Jan")
	jan.Date = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := testMonth("m-feb", "Feb")
	feb.Date = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if err := s.InsertMonth(ctx, jan, false); err != nil {
		t.Fatalf("insert jan: %v", err)
	}
	if err := s.InsertMonth(ctx, feb, true); err != nil {
		t.Fatalf("insert feb: %v", err)
	}

	// Contributors on two savings, both pointing at the month to delete.
	sv := core.Saving{ID: "s1", Name: "Car", Contributors: []core.Contributor{}, Spendings: []core.Spending{}, Date: time.Now().UTC()}
	sv2 := core.Saving{ID: "s2", Name: "House", Contributors: []core.Contributor{}, Spendings: []core.Spending{}, Date: time.Now().UTC()}
	if err := s.InsertSaving(ctx, sv); err != nil {
		t.Fatalf("insert saving: %v", err)
	}
	if err := s.InsertSaving(ctx, sv2); err != nil {
		t.Fatalf("insert saving 2: %v", err)
	}
	for i, c := range []core.Contributor{
		{ID: "c1", MonthID: "m-feb", Plan: 10},
		{ID: "c2", MonthID: "m-jan", Plan: 20},
	} {
		if err := s.AddContributor(ctx, "s1", withDate(c)); err != nil {
			t.Fatalf("add contributor %d: %v", i, err)
		}
	}
	if err := s.AddContributor(ctx, "s2", withDate(core.Contributor{ID: "c3", MonthID: "m-feb", Plan: 30})); err != nil {
		t.Fatalf("add contributor: %v", err)
	}

	deleted, err := s.DeleteMonth(ctx, "m-feb")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted == nil || deleted.ID != "m-feb" {
		t.Fatalf("unexpected deleted month: %+v", deleted)
	}

	// Contributors referencing the deleted month are gone from every saving.
	s1, _ := s.GetSaving(ctx, "s1")
	if len(s1.Contributors) != 1 || s1.Contributors[0].ID != "c2" {
		t.Fatalf("cascade missed s1: %+v", s1.Contributors)
	}
	s2, _ := s.GetSaving(ctx, "s2")
	if len(s2.Contributors) != 0 {
		t.Fatalf("cascade missed s2: %+v", s2.Contributors)
	}

	// The remaining month inherits the default flag.
	remaining, _ := s.GetMonth(ctx, "m-jan")
	if !remaining.Default {
		t.Fatalf("surviving month not promoted to default")
	}
}

func TestDeleteDefaultMonthPromotesByInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, m := range []struct {
		id, name string
		def      bool
	}{
		{"m-jan", "Jan", false},
		{"m-feb", "Feb", false},
		{"m-mar", "Mar", true},
	} {
		if err := s.InsertMonth(ctx, testMonth(m.id, m.name), m.def); err != nil {
			t.Fatalf("insert %s: %v", m.id, err)
		}
	}

	// Editing an older month restamps its created_at; that must not make it
	// the promotion candidate.
	if _, err := s.UpdateMonthBalance(ctx, "m-jan", 100, 50, "edited"); err != nil {
		t.Fatalf("update balance: %v", err)
	}

	if _, err := s.DeleteMonth(ctx, "m-mar"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	jan, _ := s.GetMonth(ctx, "m-jan")
	feb, _ := s.GetMonth(ctx, "m-feb")
	if jan.Default {
		t.Fatalf("edited older month stole the default flag")
	}
	if !feb.Default {
		t.Fatalf("most recently created month not promoted")
	}
}

func TestDeleteNonDefaultMonthLeavesFlagAlone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.InsertMonth(ctx, testMonth("m1", "Jan"), true); err != nil {
		t.Fatalf("insert m1: %v", err)
	}
	if err := s.InsertMonth(ctx, testMonth("m2", "Feb"), false); err != nil {
		t.Fatalf("insert m2: %v", err)
	}

	if _, err := s.DeleteMonth(ctx, "m2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	m1, _ := s.GetMonth(ctx, "m1")
	if !m1.Default {
		t.Fatalf("default flag lost on unrelated delete")
	}
}

func TestDeleteMissingMonthReturnsNil(t *testing.T) {
	s := newTestStore(t)

	deleted, err := s.DeleteMonth(context.Background(), "nope")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != nil {
		t.Fatalf("expected nil, got %+v", deleted)
	}
}

func TestTemplateLazySingleton(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tpl, err := s.GetTemplate(ctx)
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if tpl != nil {
		t.Fatalf("template should not exist before first write")
	}

	it := core.IncomeItem{ID: "t1", Name: "Salary", Value: 2500, CategoryID: 1, Date: time.Now().UTC()}
	if err := s.AppendTemplateIncome(ctx, it); err != nil {
		t.Fatalf("append income: %v", err)
	}
	bd := core.BudgetItem{ID: "t2", Name: "Rent", Plan: 900, CategoryID: 2, Date: time.Now().UTC()}
	if err := s.AppendTemplateBudget(ctx, bd); err != nil {
		t.Fatalf("append budget: %v", err)
	}

	tpl, err = s.GetTemplate(ctx)
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if tpl == nil {
		t.Fatalf("template missing after write")
	}
	if len(tpl.Income) != 1 || len(tpl.Budget) != 1 {
		t.Fatalf("unexpected template: %+v", tpl)
	}

	if err := s.UpdateTemplateIncome(ctx, "t1", "Salary+", 2600); err != nil {
		t.Fatalf("update income: %v", err)
	}
	tpl, _ = s.GetTemplate(ctx)
	if tpl.Income[0].Name != "Salary+" || tpl.Income[0].Value != 2600 {
		t.Fatalf("income not updated: %+v", tpl.Income[0])
	}

	if err := s.RemoveTemplateItem(ctx, "t2", KindBudget); err != nil {
		t.Fatalf("remove: %v", err)
	}
	tpl, _ = s.GetTemplate(ctx)
	if len(tpl.Budget) != 0 {
		t.Fatalf("budget item not removed: %+v", tpl.Budget)
	}
}

func TestSavingRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sv := core.Saving{
		ID: "s1", Name: "Car", Goal: 5000, Initial: 100, Comment: "used",
		Contributors: []core.Contributor{}, Spendings: []core.Spending{},
		Date: time.Now().UTC(),
	}
	if err := s.InsertSaving(ctx, sv); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := s.AddContributor(ctx, "s1", withDate(core.Contributor{ID: "c1", MonthID: "m1", Plan: 50, Actual: 40})); err != nil {
		t.Fatalf("add contributor: %v", err)
	}
	if err := s.AddSpending(ctx, "s1", withDateSp(core.Spending{ID: "sp1", MonthID: "m1", Amount: 20})); err != nil {
		t.Fatalf("add spending: %v", err)
	}

	got, err := s.GetSaving(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Goal != 5000 || len(got.Contributors) != 1 || len(got.Spendings) != 1 {
		t.Fatalf("unexpected saving: %+v", got)
	}

	if err := s.UpdateContributor(ctx, "c1", 60, 55); err != nil {
		t.Fatalf("update contributor: %v", err)
	}
	if err := s.UpdateSpending(ctx, "sp1", 25); err != nil {
		t.Fatalf("update spending: %v", err)
	}
	got, _ = s.GetSaving(ctx, "s1")
	if got.Contributors[0].Plan != 60 || got.Contributors[0].Actual != 55 {
		t.Fatalf("contributor not updated: %+v", got.Contributors[0])
	}
	if got.Spendings[0].Amount != 25 {
		t.Fatalf("spending not updated: %+v", got.Spendings[0])
	}

	updated, err := s.UpdateSaving(ctx, "s1", "Car fund", 6000, 200, "newer")
	if err != nil {
		t.Fatalf("update saving: %v", err)
	}
	if updated.Name != "Car fund" || updated.Goal != 6000 || updated.Initial != 200 {
		t.Fatalf("saving not updated: %+v", updated)
	}
	// Sub-lists survive a header update.
	if len(updated.Contributors) != 1 || len(updated.Spendings) != 1 {
		t.Fatalf("sub-lists lost on update: %+v", updated)
	}

	deleted, err := s.DeleteSaving(ctx, "s1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted == nil || deleted.ID != "s1" {
		t.Fatalf("unexpected deleted saving: %+v", deleted)
	}
	gone, _ := s.GetSaving(ctx, "s1")
	if gone != nil {
		t.Fatalf("saving still present after delete")
	}
}

func TestAddContributorToMissingSavingIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddContributor(ctx, "nope", withDate(core.Contributor{ID: "c1", MonthID: "m1"})); err != nil {
		t.Fatalf("add: %v", err)
	}
	savings, err := s.ListSavings(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(savings) != 0 {
		t.Fatalf("no saving should exist, got %d", len(savings))
	}
}

func withDate(c core.Contributor) core.Contributor {
	if c.Date.IsZero() {
		c.Date = time.Now().UTC()
	}
	return c
}

func withDateSp(sp core.Spending) core.Spending {
	if sp.Date.IsZero() {
		sp.Date = time.Now().UTC()
	}
	return sp
}
