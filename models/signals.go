package models

// IdentityResult is the outcome of a KYC-style identity check.
type IdentityResult struct {
	CustomerID  string `json:"customer_id"`
	KYCVerified bool   `json:"kyc_verified"`
	PEPMatch    bool   `json:"pep_match"`
	DocExpired  bool   `json:"doc_expired"`
}

// CreditResult is the outcome of a credit-bureau style lookup.
type CreditResult struct {
	CustomerID       string  `json:"customer_id"`
	Delinquencies12M int     `json:"delinquencies_12mo"`
	Utilization      float64 `json:"utilization"`
	RecentHardPulls  int     `json:"recent_hard_pulls"`
}

// CustomerProfile is the bank's customer-info record used by the
// agent-review variant. Fields are interface{} because the upstream
// service may substitute the string "unknown" for missing numbers.
type CustomerProfile struct {
	PastDefaults      interface{} `json:"past_defaults"`
	YearsWithEmployer interface{} `json:"years_with_employer"`
	ExistingLoans     interface{} `json:"existing_loans"`
	Note              string      `json:"note,omitempty"`
}

// ComplianceResult is the decision returned by the compliance policy service.
type ComplianceResult struct {
	Decision DisplayDecision `json:"decision"`
	Reason   string          `json:"reason"`
}
