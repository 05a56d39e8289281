package retrieval

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"loanreview-backend/models"
)

func TestQueryTextIsDeterministic(t *testing.T) {
	app := &models.Application{
		Name: "John Doe", Age: 35, Income: 80000,
		EmploymentStatus: models.EmploymentEmployed,
		CreditScore:      750, LoanAmount: 20000, TermMonths: 36,
		Purpose: "home improvement",
	}

	first := QueryText(app)
	for i := 0; i < 5; i++ {
		if got := QueryText(app); got != first {
			t.Fatalf("QueryText is not stable: %q vs %q", got, first)
		}
	}

	for _, want := range []string{"Age 35", "income 80000", "credit 750", "loan 20000", "home improvement"} {
		if !strings.Contains(first, want) {
			t.Errorf("query %q missing %q", first, want)
		}
	}
}

func TestCaseTextCarriesOutcome(t *testing.T) {
	rec := &models.DecisionRecord{
		Name: "Jane Smith", Age: 28, Income: 45000,
		EmploymentStatus: models.EmploymentEmployed,
		CreditScore:      640, LoanAmount: 12000, TermMonths: 24,
		InterestRate: 9.5, Purpose: "car",
		Decision: models.DecisionApprove,
		Reason:   "Meets baseline policy",
	}

	text := CaseText(rec)
	for _, want := range []string{"Jane Smith", "Decision: approve", "Meets baseline policy"} {
		if !strings.Contains(text, want) {
			t.Errorf("case text %q missing %q", text, want)
		}
	}
}

func TestLocalEmbedder(t *testing.T) {
	first, err := LocalEmbedder{}.Embed(context.Background(), "income 80000 credit 750 purpose home improvement")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 768 {
		t.Fatalf("got %d dimensions, want 768", len(first))
	}

	second, _ := LocalEmbedder{}.Embed(context.Background(), "income 80000 credit 750 purpose home improvement")
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("identical text produced differing vectors at index %d", i)
		}
	}

	norm := 0.0
	for _, v := range first {
		norm += v * v
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Errorf("vector norm = %v, want 1", math.Sqrt(norm))
	}

	other, _ := LocalEmbedder{}.Embed(context.Background(), "completely different text about boats")
	same := true
	for i := range first {
		if first[i] != other[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical vectors")
	}
}

type stubEmbedder struct {
	vec []float64
	err error
}

func (e stubEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	return e.vec, e.err
}

type stubSearcher struct {
	gotEmbedding []float64
	gotK         int
	cases        []models.LoanCase
	err          error
}

func (s *stubSearcher) SearchSimilar(_ context.Context, embedding []float64, k int) ([]models.LoanCase, error) {
	s.gotEmbedding = embedding
	s.gotK = k
	return s.cases, s.err
}

func TestPgCaseStoreQuery(t *testing.T) {
	vec := make([]float64, 768)
	vec[0] = 1
	searcher := &stubSearcher{cases: []models.LoanCase{{CaseText: "prior case"}}}
	store := NewPgCaseStore(stubEmbedder{vec: vec}, searcher)

	cases, err := store.Query(context.Background(), "some query", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 1 || cases[0].CaseText != "prior case" {
		t.Errorf("unexpected cases: %+v", cases)
	}
	if searcher.gotK != 3 {
		t.Errorf("k = %d, want 3", searcher.gotK)
	}
	if len(searcher.gotEmbedding) != 768 || searcher.gotEmbedding[0] != 1 {
		t.Error("embedding was not passed through to the searcher")
	}
}

func TestPgCaseStoreEmbedderFailure(t *testing.T) {
	store := NewPgCaseStore(stubEmbedder{err: errors.New("quota exceeded")}, &stubSearcher{})
	if _, err := store.Query(context.Background(), "some query", 3); err == nil {
		t.Fatal("expected embedder failure to propagate")
	}
}
