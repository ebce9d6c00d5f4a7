package core

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const (
	StatusCompleted PaymentStatus = "completed"
	StatusPending   PaymentStatus = "pending"
	StatusFailed    PaymentStatus = "failed"
)

const (
	MethodMpesa PaymentMethod = "mpesa"
	MethodBank  PaymentMethod = "bank"
)

const (
	NotificationPaymentDue     NotificationType = "payment_due"
	NotificationPaymentOverdue NotificationType = "payment_overdue"
	NotificationMessage        NotificationType = "message"
)

// DefaultRentDueDay is used for tenants created without an explicit due day.
const DefaultRentDueDay = 5

type (
	PaymentStatus    string
	PaymentMethod    string
	NotificationType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Property struct {
		ID       string
		Name     string
		Address  string
		Units    int
		ImageURL string
	}

	Tenant struct {
		ID         string
		PropertyID string
		Name       string
		Email      string
		Phone      string
		Unit       string
		Rent       Money
		MoveInDate Date
		RentDueDay int
	}

	Payment struct {
		ID        string
		TenantID  string
		Amount    Money
		Date      Date
		Status    PaymentStatus
		Method    PaymentMethod // optional, set by the tenant portal
		Reference string        // optional transaction reference
	}

	Notification struct {
		ID       string
		TenantID string
		Type     NotificationType
		Content  string
		Date     Date
		Read     bool
	}

	Message struct {
		ID        string
		TenantID  string
		FromAdmin bool
		Content   string
		SentAt    time.Time
	}
)

var (
	ErrInvalidDay        = errors.New("invalid day")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidYear       = errors.New("invalid year")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidStatus     = errors.New("invalid payment status")
	ErrInvalidMethod     = errors.New("invalid payment method")
	ErrInvalidUnits      = errors.New("units must be positive")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrInvalidDueDay     = errors.New("rent due day must be between 1 and 28")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyUnit         = errors.New("empty unit")
	ErrEmptyTenant       = errors.New("empty tenant reference")
	ErrEmptyProperty     = errors.New("empty property reference")
	ErrEmptyContent      = errors.New("empty content")
	ErrEmptyReference    = errors.New("empty payment reference")
	ErrInvalidNotifyType = errors.New("invalid notification type")
	ErrZeroDate          = errors.New("date cannot be zero")
	ErrNameTooLong       = errors.New("name too long (max 200 characters)")
	ErrContentTooLong    = errors.New("message too long (max 2000 characters)")
)

var validationErrors = []error{
	ErrInvalidDay, ErrInvalidMonth, ErrInvalidYear, ErrInvalidAmount, ErrInvalidStatus, ErrInvalidMethod,
	ErrInvalidUnits, ErrInvalidEmail, ErrInvalidDueDay, ErrEmptyName, ErrEmptyUnit,
	ErrEmptyTenant, ErrEmptyProperty, ErrEmptyContent, ErrEmptyReference, ErrInvalidNotifyType,
	ErrZeroDate, ErrNameTooLong, ErrContentTooLong,
}

// IsValidationError reports whether err stems from a Validate method.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// Display renders the date the way reports show it ("Jan 01, 2025").
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("Jan 02, 2006")
}

// Period returns the calendar month the date falls in.
func (d Date) Period() Period {
	return Period{Year: d.Year(), Month: d.Month()}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s PaymentStatus) Validate() error {
	switch s {
	case StatusCompleted, StatusPending, StatusFailed:
		return nil
	}
	return ErrInvalidStatus
}

func (m PaymentMethod) Validate() error {
	switch m {
	case MethodMpesa, MethodBank:
		return nil
	}
	return ErrInvalidMethod
}

func (p Property) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > 200 {
		return ErrNameTooLong
	}
	if p.Units <= 0 {
		return ErrInvalidUnits
	}
	return nil
}

func (t Tenant) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(t.PropertyID) == "" {
		return ErrEmptyProperty
	}
	if strings.TrimSpace(t.Unit) == "" {
		return ErrEmptyUnit
	}
	if t.Email != "" {
		if _, err := mail.ParseAddress(t.Email); err != nil {
			return ErrInvalidEmail
		}
	}
	if err := t.Rent.Validate(); err != nil {
		return err
	}
	if !t.MoveInDate.IsZero() {
		if err := t.MoveInDate.Validate(); err != nil {
			return fmt.Errorf("invalid move-in date: %w", err)
		}
	}
	if t.RentDueDay < 1 || t.RentDueDay > 28 {
		return ErrInvalidDueDay
	}
	return nil
}

func (p Payment) Validate() error {
	if strings.TrimSpace(p.TenantID) == "" {
		return ErrEmptyTenant
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if err := p.Date.Validate(); err != nil {
		return err
	}
	if err := p.Status.Validate(); err != nil {
		return err
	}
	if p.Method != "" {
		if err := p.Method.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (n Notification) Validate() error {
	if strings.TrimSpace(n.TenantID) == "" {
		return ErrEmptyTenant
	}
	switch n.Type {
	case NotificationPaymentDue, NotificationPaymentOverdue, NotificationMessage:
	default:
		return ErrInvalidNotifyType
	}
	if strings.TrimSpace(n.Content) == "" {
		return ErrEmptyContent
	}
	return n.Date.Validate()
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.TenantID) == "" {
		return ErrEmptyTenant
	}
	if strings.TrimSpace(m.Content) == "" {
		return ErrEmptyContent
	}
	if len(m.Content) > 2000 {
		return ErrContentTooLong
	}
	return nil
}
