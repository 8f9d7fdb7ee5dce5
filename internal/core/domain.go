package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// OneTime marks an expense tied to a single calendar date.
	OneTime ExpenseType = "one"
	// Recurring marks an expense that accrues its full amount every month
	// between its start and end months, inclusive.
	Recurring ExpenseType = "recurrent"
)

type (
	ExpenseType string

	User struct {
		ID           string    `json:"id"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	Category struct {
		ID        string    `json:"id"`
		UserID    string    `json:"userId"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"createdAt"`
	}

	Income struct {
		ID          string    `json:"id"`
		UserID      string    `json:"userId"`
		Amount      Money     `json:"amount"`
		Date        Date      `json:"date"`
		Source      string    `json:"source"`
		Description string    `json:"description"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	// Receipt holds metadata for a file attached to an expense. The file
	// itself lives in the receipt store, keyed by Filename.
	Receipt struct {
		Filename     string `json:"filename"`
		OriginalName string `json:"originalName"`
		MimeType     string `json:"mimeType"`
		Size         int64  `json:"size"`
	}

	// Expense is either one-time or recurring. Exactly one of Date or
	// StartDate(/EndDate) is populated, determined by Type.
	Expense struct {
		ID          string      `json:"id"`
		UserID      string      `json:"userId"`
		Amount      Money       `json:"amount"`
		Type        ExpenseType `json:"type"`
		Date        Date        `json:"date"`
		CategoryID  string      `json:"categoryId"`
		Description string      `json:"description"`
		StartDate   Date        `json:"startDate"`
		EndDate     Date        `json:"endDate"`
		Receipt     *Receipt    `json:"receipt"`
		CreatedAt   time.Time   `json:"createdAt"`
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrInvalidMonth      = errors.New("invalid month format, expected YYYY-MM")
	ErrInvalidRange      = errors.New("start and end (YYYY-MM-DD) are required")
	ErrInvalidType       = errors.New(`type must be "one" or "recurrent"`)
	ErrEmptyName         = errors.New("name is required")
)

func (t ExpenseType) Valid() bool {
	return t == OneTime || t == Recurring
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (i Income) Validate() error {
	if i.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if i.Date.IsZero() {
		return errors.New("date (YYYY-MM-DD) is required")
	}
	return nil
}

// Validate enforces the one-of date invariant and, for recurring expenses,
// that the end date does not precede the start date. The accrual engine
// additionally degrades to zero months if it ever sees an inverted window.
func (e Expense) Validate() error {
	if e.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !e.Type.Valid() {
		return ErrInvalidType
	}
	switch e.Type {
	case OneTime:
		if e.Date.IsZero() {
			return errors.New("date (YYYY-MM-DD) is required for one-time expense")
		}
		if !e.StartDate.IsZero() || !e.EndDate.IsZero() {
			return errors.New("one-time expense cannot have startDate or endDate")
		}
	case Recurring:
		if e.StartDate.IsZero() {
			return errors.New("startDate is required for recurrent expense")
		}
		if !e.Date.IsZero() {
			return errors.New("recurrent expense cannot have a date")
		}
		if !e.EndDate.IsZero() && e.EndDate.Time.Before(e.StartDate.Time) {
			return errors.New("endDate must not be before startDate")
		}
	}
	return nil
}
