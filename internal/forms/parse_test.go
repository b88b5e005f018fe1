package forms

import (
	"errors"
	"net/url"
	"testing"
	"time"
)

func TestParseMissingRequiredField(t *testing.T) {
	values := url.Values{}
	values.Set("closingDay", "10")
	values.Set("dueDay", "17")
	values.Set("color", "#0ea5e9")
	// name is missing

	payload, err := CardSchema().Parse(values)
	if payload != nil {
		t.Error("payload must be nil on validation failure")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T, want *ValidationError", err)
	}
	if verr.Fields["name"] != "required" {
		t.Errorf("name error = %q, want %q", verr.Fields["name"], "required")
	}
}

func TestParseEmptyOptionalNumericOmitted(t *testing.T) {
	values := url.Values{}
	values.Set("name", "Nubank Roxinho")
	values.Set("lastFourDigits", "")
	values.Set("brand", "")
	values.Set("limit", "")
	values.Set("closingDay", "10")
	values.Set("dueDay", "17")
	values.Set("color", "#0ea5e9")

	payload, err := CardSchema().Parse(values)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if _, present := payload["limit"]; present {
		t.Error("empty optional limit must be omitted, not coerced to 0")
	}
	if _, present := payload["lastFourDigits"]; present {
		t.Error("empty optional text field must be omitted")
	}
	if payload["closingDay"] != 10 {
		t.Errorf("closingDay = %v (%T), want int 10", payload["closingDay"], payload["closingDay"])
	}
}

func TestParseDayRange(t *testing.T) {
	values := url.Values{}
	values.Set("name", "Visa")
	values.Set("closingDay", "0")
	values.Set("dueDay", "32")
	values.Set("color", "#0ea5e9")

	_, err := CardSchema().Parse(values)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T, want *ValidationError", err)
	}
	if _, ok := verr.Fields["closingDay"]; !ok {
		t.Error("closingDay=0 must be rejected")
	}
	if _, ok := verr.Fields["dueDay"]; !ok {
		t.Error("dueDay=32 must be rejected")
	}
}

func TestParseIncomeCoercion(t *testing.T) {
	today := time.Now().Format("2006-01-02")

	values := url.Values{}
	values.Set("description", "Salário")
	values.Set("amount", "5000")
	values.Set("receivedDate", today)
	values.Set("category", "salary")

	payload, err := IncomeSchema().Parse(values)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	amount, ok := payload["amount"].(float64)
	if !ok {
		t.Fatalf("amount is %T, want float64 (never a string)", payload["amount"])
	}
	if amount != 5000.0 {
		t.Errorf("amount = %v, want 5000.0", amount)
	}
	if payload["receivedDate"] != today {
		t.Errorf("receivedDate = %v, want %s", payload["receivedDate"], today)
	}
	if payload["category"] != "salary" {
		t.Errorf("category = %v", payload["category"])
	}
	if payload["isRecurring"] != false {
		t.Errorf("isRecurring = %v, want explicit false", payload["isRecurring"])
	}
}

func TestParseBoolCheckbox(t *testing.T) {
	today := time.Now().Format("2006-01-02")

	values := url.Values{}
	values.Set("description", "Aluguel")
	values.Set("amount", "1200")
	values.Set("receivedDate", today)
	values.Set("category", "other")
	values.Set("isRecurring", "on")

	payload, err := IncomeSchema().Parse(values)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if payload["isRecurring"] != true {
		t.Errorf("isRecurring = %v, want true", payload["isRecurring"])
	}
}

func TestParseRejectsBadNumbers(t *testing.T) {
	values := url.Values{}
	values.Set("description", "x")
	values.Set("amount", "abc")
	values.Set("receivedDate", "2026-08-31")
	values.Set("category", "salary")

	_, err := IncomeSchema().Parse(values)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T, want *ValidationError", err)
	}
	if verr.Fields["amount"] != "must be a number" {
		t.Errorf("amount error = %q", verr.Fields["amount"])
	}
}

func TestParseRejectsNegativeAmounts(t *testing.T) {
	values := url.Values{}
	values.Set("description", "x")
	values.Set("amount", "-5")
	values.Set("receivedDate", "2026-08-31")
	values.Set("category", "salary")

	_, err := IncomeSchema().Parse(values)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T, want *ValidationError", err)
	}
	if _, ok := verr.Fields["amount"]; !ok {
		t.Error("negative amount must be rejected")
	}
}

func TestParseRejectsUnknownEnum(t *testing.T) {
	values := url.Values{}
	values.Set("description", "x")
	values.Set("amount", "10")
	values.Set("receivedDate", "2026-08-31")
	values.Set("category", "rent")

	_, err := IncomeSchema().Parse(values)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T, want *ValidationError", err)
	}
	if verr.Fields["category"] != "invalid value" {
		t.Errorf("category error = %q", verr.Fields["category"])
	}
}

func TestParseBadDate(t *testing.T) {
	values := url.Values{}
	values.Set("description", "x")
	values.Set("amount", "10")
	values.Set("receivedDate", "31/08/2026")
	values.Set("category", "salary")

	_, err := IncomeSchema().Parse(values)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T, want *ValidationError", err)
	}
	if _, ok := verr.Fields["receivedDate"]; !ok {
		t.Error("non-ISO date must be rejected")
	}
}

func TestParseTextMaxLen(t *testing.T) {
	values := url.Values{}
	values.Set("name", "Visa")
	values.Set("lastFourDigits", "12345")
	values.Set("closingDay", "10")
	values.Set("dueDay", "17")
	values.Set("color", "#0ea5e9")

	_, err := CardSchema().Parse(values)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T, want *ValidationError", err)
	}
	if _, ok := verr.Fields["lastFourDigits"]; !ok {
		t.Error("five-character lastFourDigits must be rejected")
	}
}

func TestDefaults(t *testing.T) {
	draft := TransactionSchema().Defaults()

	if draft["description"] != "" {
		t.Errorf("description default = %q, want empty", draft["description"])
	}
	if draft["type"] != "EXPENSE" {
		t.Errorf("type default = %q, want EXPENSE", draft["type"])
	}
	if draft["installments"] != "1" {
		t.Errorf("installments default = %q, want 1", draft["installments"])
	}
	if draft["date"] != time.Now().Format("2006-01-02") {
		t.Errorf("date default = %q, want today", draft["date"])
	}

	income := IncomeSchema().Defaults()
	if income["category"] != "salary" {
		t.Errorf("income category default = %q, want salary", income["category"])
	}
}

func TestLoanParse(t *testing.T) {
	values := url.Values{}
	values.Set("description", "Financiamento carro")
	values.Set("totalAmount", "30000.50")
	values.Set("interestRate", "12.5")
	values.Set("installments", "48")
	values.Set("dueDay", "5")
	values.Set("startDate", "2026-01-10")

	payload, err := LoanSchema().Parse(values)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if payload["totalAmount"] != 30000.50 {
		t.Errorf("totalAmount = %v", payload["totalAmount"])
	}
	if payload["interestRate"] != 12.5 {
		t.Errorf("interestRate = %v", payload["interestRate"])
	}
	if payload["installments"] != 48 {
		t.Errorf("installments = %v (%T), want int 48", payload["installments"], payload["installments"])
	}
}

func TestZeroInterestRateAllowed(t *testing.T) {
	values := url.Values{}
	values.Set("description", "Empréstimo família")
	values.Set("totalAmount", "1000")
	values.Set("interestRate", "0")
	values.Set("installments", "10")
	values.Set("dueDay", "1")
	values.Set("startDate", "2026-02-01")

	payload, err := LoanSchema().Parse(values)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if payload["interestRate"] != 0.0 {
		t.Errorf("interestRate = %v, want 0", payload["interestRate"])
	}
}
