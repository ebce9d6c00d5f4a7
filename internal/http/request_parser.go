// Package http provides the rentdesk JSON API.
//
// This file holds the request-side parsing: query parameters selecting a
// reporting period and the JSON bodies of the write endpoints.
package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rentdesk/internal/core"
	"rentdesk/internal/revenue"
)

// ParsePeriod reads year and month from query parameters. month is 1..12;
// month_index (0..11, as sent by the dashboard month selector) is accepted
// in its place. Missing values default to the month containing now.
func ParsePeriod(q url.Values, now time.Time) (core.Period, error) {
	period := core.CurrentPeriod(now)

	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, fmt.Errorf("%w: year %q", errBadRequest, v)
		}
		period.Year = y
	}

	if v := strings.TrimSpace(q.Get("month_index")); v != "" {
		idx, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, fmt.Errorf("%w: month_index %q", errBadRequest, v)
		}
		if period, err = core.PeriodFromIndex(period.Year, idx); err != nil {
			return core.Period{}, err
		}
	} else if v := strings.TrimSpace(q.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, fmt.Errorf("%w: month %q", errBadRequest, v)
		}
		period.Month = time.Month(m)
	}
	if err := period.Validate(); err != nil {
		return core.Period{}, err
	}
	return period, nil
}

// parseFilter reads the property query parameter; absent means all.
func parseFilter(q url.Values) revenue.PropertyFilter {
	return revenue.ParsePropertyFilter(sanitizeInput(q.Get("property")))
}

// amountInput accepts an amount as a JSON number (15000.5) or a decimal
// string ("15000,50").
type amountInput struct {
	raw string
	set bool
}

func (a *amountInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	a.set = true
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &a.raw)
	}
	a.raw = string(b)
	return nil
}

// Money parses the amount. An absent amount is zero.
func (a amountInput) Money() (core.Money, error) {
	if !a.set {
		return core.Money{}, nil
	}
	return core.ParseMoney(a.raw)
}

// parseOptionalDate parses YYYY-MM-DD; empty means the zero date.
func parseOptionalDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return d, nil
}

type propertyRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Units    int    `json:"units"`
	ImageURL string `json:"image_url"`
}

func (req propertyRequest) property(id string) core.Property {
	return core.Property{
		ID:       id,
		Name:     sanitizeInput(req.Name),
		Address:  sanitizeInput(req.Address),
		Units:    req.Units,
		ImageURL: sanitizeInput(req.ImageURL),
	}
}

type tenantRequest struct {
	PropertyID string      `json:"property_id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	Unit       string      `json:"unit"`
	Rent       amountInput `json:"rent"`
	MoveInDate string      `json:"move_in_date"`
	RentDueDay int         `json:"rent_due_day"`
}

func (req tenantRequest) tenant(id string) (core.Tenant, error) {
	rent, err := req.Rent.Money()
	if err != nil {
		return core.Tenant{}, err
	}
	moveIn, err := parseOptionalDate(req.MoveInDate)
	if err != nil {
		return core.Tenant{}, err
	}
	dueDay := req.RentDueDay
	if dueDay == 0 {
		dueDay = core.DefaultRentDueDay
	}
	return core.Tenant{
		ID:         id,
		PropertyID: sanitizeInput(req.PropertyID),
		Name:       sanitizeInput(req.Name),
		Email:      sanitizeInput(req.Email),
		Phone:      sanitizeInput(req.Phone),
		Unit:       sanitizeInput(req.Unit),
		Rent:       rent,
		MoveInDate: moveIn,
		RentDueDay: dueDay,
	}, nil
}

type paymentRequest struct {
	TenantID  string      `json:"tenant_id"`
	Amount    amountInput `json:"amount"`
	Date      string      `json:"date"`
	Status    string      `json:"status"`
	Method    string      `json:"method"`
	Reference string      `json:"reference"`
}

func (req paymentRequest) payment() (core.Payment, error) {
	amount, err := req.Amount.Money()
	if err != nil {
		return core.Payment{}, err
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		return core.Payment{}, err
	}
	return core.Payment{
		TenantID:  sanitizeInput(req.TenantID),
		Amount:    amount,
		Date:      date,
		Status:    core.PaymentStatus(strings.ToLower(sanitizeInput(req.Status))),
		Method:    core.PaymentMethod(strings.ToLower(sanitizeInput(req.Method))),
		Reference: sanitizeInput(req.Reference),
	}, nil
}

type statusRequest struct {
	Status string `json:"status"`
}

type messageRequest struct {
	Content string `json:"content"`
}
