package llm

import (
	"encoding/json"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"loanreview-backend/models"
)

// Synonym tables for free-text decision values. Model output is not
// guaranteed to be English, so common approve/reject/hold forms across a
// few languages are covered. Anything unrecognized maps to Flag, never
// to Approve.
var (
	approveSynonyms = map[string]struct{}{
		"approve": {}, "approved": {}, "ok": {}, "accept": {}, "accepted": {},
		"grant": {}, "granted": {},
		"approuve": {}, "approuvee": {}, "aprobado": {}, "aprovado": {},
	}
	rejectSynonyms = map[string]struct{}{
		"reject": {}, "rejected": {}, "deny": {}, "denied": {},
		"decline": {}, "declined": {},
		"rejeter": {}, "rejete": {}, "rechazado": {}, "negado": {},
	}
	flagSynonyms = map[string]struct{}{
		"flag": {}, "review": {}, "manual review": {}, "manual_review": {},
		"needs review": {}, "hold": {},
		"surveiller": {}, "revision": {}, "pendiente": {},
	}
)

// NormalizeDecision maps a free-text decision value onto the closed display
// set {Approve, Reject, Flag}. The second return reports whether the text
// was recognized at all; unrecognized text still yields Flag as the safe
// default.
func NormalizeDecision(s string) (models.DisplayDecision, bool) {
	t := strings.ToLower(strings.TrimSpace(stripAccents(s)))
	if _, ok := approveSynonyms[t]; ok {
		return models.DisplayApprove, true
	}
	if _, ok := rejectSynonyms[t]; ok {
		return models.DisplayReject, true
	}
	if _, ok := flagSynonyms[t]; ok {
		return models.DisplayFlag, true
	}
	return models.DisplayFlag, false
}

// stripAccents removes combining marks so accented synonyms fold onto
// their ASCII forms.
func stripAccents(s string) string {
	decomposed := norm.NFKD.String(s)
	var builder strings.Builder
	builder.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

// ExtractJSONBlock returns the first well-formed JSON object embedded in
// text, tolerating code fences and surrounding commentary. Model output is
// untrusted; callers must still validate every field of the result.
func ExtractJSONBlock(text string) (map[string]interface{}, bool) {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "```") {
		t = strings.Trim(t, "` \n")
		if strings.HasPrefix(strings.ToLower(t), "json") {
			t = strings.TrimSpace(t[4:])
		}
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(t[start:end+1]), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}
