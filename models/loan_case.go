package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
)

// CaseMetadata holds the structured fields of an indexed historical case.
type CaseMetadata map[string]interface{}

// Value implements driver.Valuer for JSONB
func (m CaseMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB
func (m *CaseMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(CaseMetadata)
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	if len(bytes) == 0 {
		*m = make(CaseMetadata)
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// LoanCase is one entry of the similarity store: a rendered historical
// decision plus its embedding. Distance is populated on retrieval.
type LoanCase struct {
	ID       uuid.UUID    `json:"id"`
	CaseText string       `json:"case_text"`
	Metadata CaseMetadata `json:"metadata"`
	Distance float64      `json:"distance,omitempty"`
}
