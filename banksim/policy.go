package banksim

import (
	"fmt"
	"math"

	"loanreview-backend/models"
)

// EvaluateCompliance applies the bank's lending policy to an application and
// returns a display-convention decision with a short reason. The policy is
// deterministic and ordered: hard rejections, then fast approvals, then
// review flags, then a conservative default approve.
func EvaluateCompliance(app *models.Application) models.ComplianceResult {
	cs := app.CreditScore
	inc := app.Income
	amt := app.LoanAmount
	emp := app.EmploymentStatus

	// Derived: loan-to-income ratio (LTI)
	lti := math.Inf(1)
	if inc > 0 {
		lti = amt / inc
	}

	// Hard rejections (high risk)
	if cs < 580 {
		return models.ComplianceResult{Decision: models.DisplayReject, Reason: "Very low credit score (<580)"}
	}
	if inc < 15000 {
		return models.ComplianceResult{Decision: models.DisplayReject, Reason: "Insufficient income (<15,000)"}
	}
	if lti > 0.60 {
		return models.ComplianceResult{Decision: models.DisplayReject, Reason: "Loan-to-income too high (>60%)"}
	}
	if emp == models.EmploymentUnemployed && cs < 640 {
		return models.ComplianceResult{Decision: models.DisplayReject, Reason: "Unemployed with weak credit"}
	}

	// Fast approvals (low risk)
	if cs >= 700 && inc >= 75000 && lti <= 0.40 {
		return models.ComplianceResult{Decision: models.DisplayApprove, Reason: "Good credit, strong income, affordable loan"}
	}
	if amt <= 5000 && cs >= 650 && lti <= 0.50 {
		return models.ComplianceResult{Decision: models.DisplayApprove, Reason: "Small affordable loan with adequate credit"}
	}

	// Flags (needs officer review)
	if cs >= 600 && cs < 700 {
		return models.ComplianceResult{Decision: models.DisplayFlag, Reason: "Mid credit band (600-699) - review"}
	}
	if lti > 0.40 && lti <= 0.60 {
		return models.ComplianceResult{Decision: models.DisplayFlag, Reason: "Borderline affordability (LTI 40-60%) - review"}
	}
	switch emp {
	case models.EmploymentSelfEmployed, models.EmploymentContract, models.EmploymentStudent, models.EmploymentRetired:
		return models.ComplianceResult{Decision: models.DisplayFlag, Reason: fmt.Sprintf("Employment status '%s' - review", emp)}
	}
	if inc >= 15000 && inc < 75000 {
		return models.ComplianceResult{Decision: models.DisplayFlag, Reason: "Moderate income - review"}
	}

	// Default: conservative approve if all checks passed
	return models.ComplianceResult{Decision: models.DisplayApprove, Reason: "Meets baseline policy"}
}

// knownCustomers is the simulated core-banking customer directory.
var knownCustomers = map[string]models.CustomerProfile{
	"John Doe":      {PastDefaults: 0, YearsWithEmployer: 5, ExistingLoans: 1},
	"Jane Smith":    {PastDefaults: 1, YearsWithEmployer: 1, ExistingLoans: 3},
	"Ayesha Perera": {PastDefaults: 0, YearsWithEmployer: 3, ExistingLoans: 0},
	"Sunil Silva":   {PastDefaults: 0, YearsWithEmployer: 0, ExistingLoans: 2},
}

// LookupCustomer returns the customer's profile, or a generic profile when
// the name is not on file.
func LookupCustomer(name string) models.CustomerProfile {
	if profile, ok := knownCustomers[name]; ok {
		return profile
	}
	return models.CustomerProfile{PastDefaults: 0, YearsWithEmployer: 2, ExistingLoans: 0}
}
