package pipeline

import (
	"context"
	"sync"

	"loanreview-backend/models"
	"loanreview-backend/tools"
)

// gatherSignals runs the identity and credit lookups. The two lookups are
// independent, so they execute concurrently into distinct result slots.
// Either may fail without aborting the run; failures become stage errors
// and the corresponding signal stays absent.
func gatherSignals(ctx context.Context, state *State, identity tools.IdentityChecker, credit tools.CreditChecker) {
	var (
		wg       sync.WaitGroup
		idResult *models.IdentityResult
		idErr    error
		crResult *models.CreditResult
		crErr    error
	)

	if identity != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idResult, idErr = identity.Check(ctx, state.Application.Name)
		}()
	}
	if credit != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			crResult, crErr = credit.Check(ctx, state.Application.Name)
		}()
	}
	wg.Wait()

	if identity != nil {
		if idErr != nil {
			state.AddError(ToolKYC, idErr)
		} else {
			state.Identity = idResult
			state.UsedTools.Add(ToolKYC)
		}
	}
	if credit != nil {
		if crErr != nil {
			state.AddError(ToolCredit, crErr)
		} else {
			state.Credit = crResult
			state.UsedTools.Add(ToolCredit)
		}
	}
}
