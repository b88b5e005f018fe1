package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	TypeExpense TransactionType = "EXPENSE"
	TypeIncome  TransactionType = "INCOME"
)

const (
	CategorySalary     IncomeCategory = "salary"
	CategoryFreelance  IncomeCategory = "freelance"
	CategoryInvestment IncomeCategory = "investment"
	CategoryBonus      IncomeCategory = "bonus"
	CategoryOther      IncomeCategory = "other"
)

const (
	InsightWarning    InsightType = "WARNING"
	InsightSuccess    InsightType = "SUCCESS"
	InsightInfo       InsightType = "INFO"
	InsightSuggestion InsightType = "SUGGESTION"
)

type (
	TransactionType string
	IncomeCategory  string
	InsightType     string

	// Card is a registered credit card as returned by the backend.
	Card struct {
		ID             string   `json:"id"`
		Name           string   `json:"name"`
		LastFourDigits string   `json:"lastFourDigits,omitempty"`
		Brand          string   `json:"brand,omitempty"`
		Limit          *float64 `json:"limit,omitempty"`
		ClosingDay     int      `json:"closingDay"`
		DueDay         int      `json:"dueDay"`
		Color          string   `json:"color"`
	}

	// Transaction is a single expense or income entry, possibly split
	// into installments by the backend. CurrentInstallment is assigned
	// server-side and only displayed here.
	Transaction struct {
		ID                 string          `json:"id"`
		CardID             string          `json:"cardId,omitempty"`
		Description        string          `json:"description"`
		Amount             float64         `json:"amount"`
		Type               TransactionType `json:"type"`
		Category           string          `json:"category"`
		Date               string          `json:"date"`
		Installments       int             `json:"installments"`
		CurrentInstallment int             `json:"currentInstallment,omitempty"`
		IsRecurring        bool            `json:"isRecurring"`
		Notes              string          `json:"notes,omitempty"`
	}

	Income struct {
		ID           string         `json:"id"`
		Description  string         `json:"description"`
		Amount       float64        `json:"amount"`
		ReceivedDate string         `json:"receivedDate"`
		IsRecurring  bool           `json:"isRecurring"`
		Category     IncomeCategory `json:"category"`
		Notes        string         `json:"notes,omitempty"`
	}

	Loan struct {
		ID           string  `json:"id"`
		Description  string  `json:"description"`
		TotalAmount  float64 `json:"totalAmount"`
		InterestRate float64 `json:"interestRate"`
		Installments int     `json:"installments"`
		DueDay       int     `json:"dueDay"`
		StartDate    string  `json:"startDate"`
		Notes        string  `json:"notes,omitempty"`
	}

	// CategoryAmount is one row of the top-expense-categories ranking.
	CategoryAmount struct {
		Category string  `json:"category"`
		Amount   float64 `json:"amount"`
	}

	// FinancialSummary is computed entirely by the backend and rendered
	// verbatim by the dashboard.
	FinancialSummary struct {
		TotalIncome          float64          `json:"totalIncome"`
		TotalExpenses        float64          `json:"totalExpenses"`
		Balance              float64          `json:"balance"`
		SavingsRate          float64          `json:"savingsRate"`
		TopExpenseCategories []CategoryAmount `json:"topExpenseCategories"`
	}

	// Insight is a server-computed observation about the user's finances.
	Insight struct {
		ID          string      `json:"id"`
		Type        InsightType `json:"type"`
		Title       string      `json:"title"`
		Description string      `json:"description"`
	}
)

var (
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidDay       = errors.New("day must be between 1 and 31")
	ErrInvalidAmount    = errors.New("amount must not be negative")
	ErrInvalidDigits    = errors.New("last four digits must be at most 4 characters")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidCategory  = errors.New("invalid income category")
	ErrBadInstallments  = errors.New("installments must be at least 1")
)

// ValidDay reports whether d is usable as a closing or due day of month.
func ValidDay(d int) bool {
	return d >= 1 && d <= 31
}

func (t TransactionType) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

func (c IncomeCategory) Valid() bool {
	switch c {
	case CategorySalary, CategoryFreelance, CategoryInvestment, CategoryBonus, CategoryOther:
		return true
	}
	return false
}

// IncomeCategories lists the accepted income categories in display order.
func IncomeCategories() []IncomeCategory {
	return []IncomeCategory{CategorySalary, CategoryFreelance, CategoryInvestment, CategoryBonus, CategoryOther}
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.LastFourDigits) > 4 {
		return ErrInvalidDigits
	}
	if c.Limit != nil && *c.Limit < 0 {
		return ErrInvalidAmount
	}
	if !ValidDay(c.ClosingDay) || !ValidDay(c.DueDay) {
		return ErrInvalidDay
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Installments < 1 {
		return ErrBadInstallments
	}
	return nil
}

func (i Income) Validate() error {
	if strings.TrimSpace(i.Description) == "" {
		return ErrEmptyDescription
	}
	if i.Amount < 0 {
		return ErrInvalidAmount
	}
	if !i.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

func (l Loan) Validate() error {
	if strings.TrimSpace(l.Description) == "" {
		return ErrEmptyDescription
	}
	if l.TotalAmount < 0 || l.InterestRate < 0 {
		return ErrInvalidAmount
	}
	if l.Installments < 1 {
		return ErrBadInstallments
	}
	if !ValidDay(l.DueDay) {
		return ErrInvalidDay
	}
	return nil
}

// FormatBRL renders a currency value the way the dashboard displays it:
// two fraction digits, display only.
func FormatBRL(v float64) string {
	return fmt.Sprintf("R$ %.2f", v)
}

// FormatPercent renders a rate with a single fraction digit.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// IconClass maps an insight type to its display icon class.
func (t InsightType) IconClass() string {
	switch t {
	case InsightWarning:
		return "insight-warning"
	case InsightSuccess:
		return "insight-success"
	case InsightSuggestion:
		return "insight-suggestion"
	default:
		return "insight-info"
	}
}
