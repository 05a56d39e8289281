package pipeline

import (
	"context"

	"loanreview-backend/retrieval"
)

// retrieveCases queries the similarity store for the top-k historical
// cases. Any failure leaves SimilarCases empty and records a stage error;
// retrieval never blocks the decision.
func retrieveCases(ctx context.Context, state *State, store retrieval.CaseStore, k int) {
	if store == nil {
		return
	}

	query := retrieval.QueryText(state.Application)
	cases, err := store.Query(ctx, query, k)
	if err != nil {
		state.AddError("similarity", err)
		return
	}

	state.SimilarCases = cases
	if len(cases) > 0 {
		state.UsedTools.Add(ToolSimilar)
	}
}
