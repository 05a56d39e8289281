package models

import (
	"fmt"
	"math"
	"strings"
)

// EmploymentStatus represents the applicant's employment situation
type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self-employed"
	EmploymentStudent      EmploymentStatus = "student"
	EmploymentRetired      EmploymentStatus = "retired"
	EmploymentContract     EmploymentStatus = "contract"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
)

// ValidEmploymentStatuses lists every accepted employment status
var ValidEmploymentStatuses = []EmploymentStatus{
	EmploymentEmployed,
	EmploymentSelfEmployed,
	EmploymentStudent,
	EmploymentRetired,
	EmploymentContract,
	EmploymentUnemployed,
}

// Application represents a loan application as submitted by the applicant.
// It is validated once at ingestion and treated as read-only afterwards.
type Application struct {
	Name             string           `json:"name"`
	Age              int              `json:"age"`
	Income           float64          `json:"income"`
	EmploymentStatus EmploymentStatus `json:"employment_status"`
	CreditScore      int              `json:"credit_score"`
	LoanAmount       float64          `json:"loan_amount"`
	TermMonths       int              `json:"term_months"`
	InterestRate     float64          `json:"interest_rate"`
	Purpose          string           `json:"purpose"`
}

// Validate checks the application against the intake constraints.
// The review pipeline never runs on an application that fails validation.
func (a *Application) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("name must not be empty")
	}
	if a.Age < 18 || a.Age > 100 {
		return fmt.Errorf("age must be between 18 and 100, got %d", a.Age)
	}
	if a.Income < 0 {
		return fmt.Errorf("income must be >= 0, got %v", a.Income)
	}
	valid := false
	for _, s := range ValidEmploymentStatuses {
		if a.EmploymentStatus == s {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid employment_status: %q", a.EmploymentStatus)
	}
	if a.CreditScore < 300 || a.CreditScore > 900 {
		return fmt.Errorf("credit_score must be in [300, 900], got %d", a.CreditScore)
	}
	if a.LoanAmount < 0 {
		return fmt.Errorf("loan_amount must be >= 0, got %v", a.LoanAmount)
	}
	if a.TermMonths <= 0 {
		return fmt.Errorf("term_months must be positive, got %d", a.TermMonths)
	}
	if a.InterestRate < 0 {
		return fmt.Errorf("interest_rate must be >= 0, got %v", a.InterestRate)
	}
	return nil
}

// LoanToIncome returns the loan-to-income ratio rounded to 3 decimals.
// It is defined only when income is positive; the second return reports that.
func (a *Application) LoanToIncome() (float64, bool) {
	if a.Income <= 0 {
		return 0, false
	}
	return math.Round(a.LoanAmount/a.Income*1000) / 1000, true
}
