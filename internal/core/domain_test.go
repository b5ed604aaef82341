package core

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"January 2026", "january-2026"},
		{"  March  ", "march"},
		{"Già Spesò!", "gi-spes"},
		{"a--b", "a-b"},
		{"2026/01", "2026-01"},
		{"UPPER", "upper"},
		{"", ""},
		{"!!!", ""},
	}
	for i, tc := range cases {
		if got := Slugify(tc.name); got != tc.want {
			t.Fatalf("case %d: Slugify(%q) = %q, want %q", i, tc.name, got, tc.want)
		}
	}
}

func TestValidateName(t *testing.T) {
	if err := ValidateName("x"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := ValidateName(strings.Repeat("a", 255)); err != nil {
		t.Fatalf("expected ok at 255, got %v", err)
	}
	if err := ValidateName(""); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := ValidateName(strings.Repeat("a", 256)); err == nil {
		t.Fatalf("expected error at 256")
	}
}

func TestIncomeItemValidate(t *testing.T) {
	good := IncomeItem{Name: "Salary", Value: 2500, CategoryID: 1}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []IncomeItem{
		{Name: "", Value: 1},
		{Name: "a", Value: -1},
		{Name: "a", Value: 1, CategoryID: -2},
	}
	for i, it := range bads {
		if err := it.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetItemValidate(t *testing.T) {
	good := BudgetItem{Name: "Rent", Plan: 900, Actual: 0, CategoryID: 2}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []BudgetItem{
		{Name: "", Plan: 1, Actual: 1},
		{Name: "a", Plan: -1, Actual: 0},
		{Name: "a", Plan: 0, Actual: -1},
		{Name: "a", Plan: 1, Actual: 1, CategoryID: -1},
	}
	for i, it := range bads {
		if err := it.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSavingValidate(t *testing.T) {
	if err := (Saving{Name: "Car", Goal: 5000, Initial: 0}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Saving{Name: "Car", Goal: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative goal")
	}
	if err := (Saving{Name: "Car", Initial: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative initial")
	}
}

func TestContributorValidate(t *testing.T) {
	if err := (Contributor{MonthID: "m1", Plan: 10, Actual: 5}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Contributor{
		{MonthID: "", Plan: 1},
		{MonthID: "  ", Plan: 1},
		{MonthID: "m1", Plan: -1},
		{MonthID: "m1", Actual: -1},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSpendingValidate(t *testing.T) {
	if err := (Spending{MonthID: "m1", Amount: 3}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Spending{MonthID: "", Amount: 3}).Validate(); err == nil {
		t.Fatalf("expected error for missing month id")
	}
	if err := (Spending{MonthID: "m1", Amount: -3}).Validate(); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}
