package llm

import (
	"testing"

	"loanreview-backend/models"
)

func TestNormalizeDecision(t *testing.T) {
	tests := []struct {
		input          string
		want           models.DisplayDecision
		wantRecognized bool
	}{
		{"Approve", models.DisplayApprove, true},
		{"approved", models.DisplayApprove, true},
		{"  ACCEPTED  ", models.DisplayApprove, true},
		{"granted", models.DisplayApprove, true},
		{"approuvé", models.DisplayApprove, true},
		{"aprobado", models.DisplayApprove, true},

		{"Reject", models.DisplayReject, true},
		{"DENIED", models.DisplayReject, true},
		{"declined", models.DisplayReject, true},
		{"rejeté", models.DisplayReject, true},
		{"rechazado", models.DisplayReject, true},

		{"Flag", models.DisplayFlag, true},
		{"manual review", models.DisplayFlag, true},
		{"manual_review", models.DisplayFlag, true},
		{"hold", models.DisplayFlag, true},
		{"Pendiente", models.DisplayFlag, true},
		{"révision", models.DisplayFlag, true},

		// Unrecognized text is never an approval.
		{"fly to the moon", models.DisplayFlag, false},
		{"approve it maybe", models.DisplayFlag, false},
		{"", models.DisplayFlag, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, recognized := NormalizeDecision(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeDecision(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if recognized != tt.wantRecognized {
				t.Errorf("NormalizeDecision(%q) recognized = %v, want %v", tt.input, recognized, tt.wantRecognized)
			}
		})
	}
}

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		check  func(t *testing.T, parsed map[string]interface{})
	}{
		{
			name:   "plain object",
			input:  `{"decision": "Approve", "reason": "fine"}`,
			wantOK: true,
			check: func(t *testing.T, parsed map[string]interface{}) {
				if parsed["decision"] != "Approve" {
					t.Errorf("decision = %v", parsed["decision"])
				}
			},
		},
		{
			name:   "fenced json",
			input:  "```json\n{\"decision\": \"Flag\"}\n```",
			wantOK: true,
			check: func(t *testing.T, parsed map[string]interface{}) {
				if parsed["decision"] != "Flag" {
					t.Errorf("decision = %v", parsed["decision"])
				}
			},
		},
		{
			name:   "surrounding commentary",
			input:  "Sure! Here is the card:\n{\"decision\": \"Reject\", \"used_tools\": [\"check_compliance\"]}\nLet me know if you need anything else.",
			wantOK: true,
			check: func(t *testing.T, parsed map[string]interface{}) {
				if parsed["decision"] != "Reject" {
					t.Errorf("decision = %v", parsed["decision"])
				}
			},
		},
		{name: "no braces", input: "approve", wantOK: false},
		{name: "malformed json", input: `{"decision": }`, wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := ExtractJSONBlock(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.check != nil && ok {
				tt.check(t, parsed)
			}
		})
	}
}
