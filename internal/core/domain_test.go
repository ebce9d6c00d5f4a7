package core

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, time.January, 1), true},
		{NewDate(2025, time.December, 31), true},
		{Date{Time: time.Time{}}, false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2025-01-15 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.January || d.Day() != 15 {
		t.Fatalf("unexpected date %v", d)
	}
	if d.String() != "2025-01-15" || d.Display() != "Jan 15, 2025" {
		t.Fatalf("unexpected rendering %q / %q", d.String(), d.Display())
	}
	if _, err := ParseDate("15/01/2025"); err == nil {
		t.Fatalf("expected error for non ISO date")
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestPropertyValidate(t *testing.T) {
	if err := (Property{Name: "Sunset Apartments", Units: 24}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Property{Name: " ", Units: 24}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Property{Name: "x", Units: 0}).Validate(); !errors.Is(err, ErrInvalidUnits) {
		t.Fatalf("expected ErrInvalidUnits, got %v", err)
	}
}

func TestTenantValidate(t *testing.T) {
	good := Tenant{
		PropertyID: "1",
		Name:       "John Doe",
		Email:      "john@example.com",
		Unit:       "101",
		Rent:       Money{Cents: 1500000},
		MoveInDate: NewDate(2024, time.January, 1),
		RentDueDay: 5,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mod  func(*Tenant)
		want error
	}{
		{"name", func(t *Tenant) { t.Name = "" }, ErrEmptyName},
		{"property", func(t *Tenant) { t.PropertyID = "" }, ErrEmptyProperty},
		{"unit", func(t *Tenant) { t.Unit = "" }, ErrEmptyUnit},
		{"email", func(t *Tenant) { t.Email = "not-an-email" }, ErrInvalidEmail},
		{"rent", func(t *Tenant) { t.Rent = Money{} }, ErrInvalidAmount},
		{"due day", func(t *Tenant) { t.RentDueDay = 31 }, ErrInvalidDueDay},
	}
	for _, tc := range cases {
		tn := good
		tc.mod(&tn)
		if err := tn.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestPaymentValidate(t *testing.T) {
	good := Payment{
		TenantID: "1",
		Amount:   Money{Cents: 1500000},
		Date:     NewDate(2025, time.January, 1),
		Status:   StatusCompleted,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Payment{
		{Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Status: StatusPending},
		{TenantID: "1", Amount: Money{Cents: 0}, Date: NewDate(2025, 1, 1), Status: StatusPending},
		{TenantID: "1", Amount: Money{Cents: 1}, Status: StatusPending},
		{TenantID: "1", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Status: "refunded"},
		{TenantID: "1", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Status: StatusPending, Method: "cash"},
	}
	for i, p := range bads {
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestPeriodFromIndex(t *testing.T) {
	p, err := PeriodFromIndex(2025, 0)
	if err != nil || p.Month != time.January || p.Year != 2025 {
		t.Fatalf("expected January 2025, got %v (err=%v)", p, err)
	}
	p, err = PeriodFromIndex(2024, 11)
	if err != nil || p.Month != time.December {
		t.Fatalf("expected December, got %v (err=%v)", p, err)
	}
	for _, idx := range []int{-1, 12} {
		if _, err := PeriodFromIndex(2025, idx); !errors.Is(err, ErrInvalidMonth) {
			t.Fatalf("index %d expected ErrInvalidMonth, got %v", idx, err)
		}
	}
}

func TestPeriodContains(t *testing.T) {
	jan := Period{Year: 2025, Month: time.January}
	if !jan.Contains(NewDate(2025, time.January, 31)) {
		t.Fatalf("expected Jan 31 in period")
	}
	if jan.Contains(NewDate(2025, time.February, 1)) {
		t.Fatalf("expected Feb 1 outside period")
	}
	if jan.Contains(NewDate(2024, time.January, 15)) {
		t.Fatalf("expected other year outside period")
	}
	if jan.String() != "2025-01" || jan.Label() != "January 2025" {
		t.Fatalf("unexpected rendering %q / %q", jan.String(), jan.Label())
	}
}

func TestIsValidationError(t *testing.T) {
	err := Payment{TenantID: "1", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Status: "x"}.Validate()
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !IsValidationError(fmt.Errorf("record payment: %w", ErrInvalidAmount)) {
		t.Fatalf("wrapped validation errors should be recognised")
	}
	if IsValidationError(errors.New("disk full")) {
		t.Fatalf("unrelated error classified as validation")
	}
}
