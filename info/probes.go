package info

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/drblury/openapiserver/probe"
)

type probePayload struct {
	Status  string   `json:"status"`
	Details []string `json:"details,omitempty"`
}

func (h *Handler) respondProbe(w http.ResponseWriter, r *http.Request, status int, state string, details ...string) {
	payload := probePayload{Status: state}
	if len(details) > 0 {
		payload.Details = append(payload.Details, details...)
	}
	h.RespondWithJSON(w, r, status, payload)
}

// runChecks runs checks concurrently under the probe timeout and reports the
// first failure.
func (h *Handler) runChecks(ctx context.Context, checks []probe.Func) error {
	if len(checks) == 0 {
		return nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, h.probeTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(probeCtx)
	for idx, check := range checks {
		g.Go(func() error {
			err := check(gctx)
			switch {
			case err == nil:
				return nil
			case errors.Is(err, context.DeadlineExceeded):
				return fmt.Errorf("probe %d timed out after %s", idx+1, h.probeTimeout)
			case errors.Is(err, context.Canceled):
				return fmt.Errorf("probe %d was cancelled", idx+1)
			default:
				return fmt.Errorf("probe %d failed: %w", idx+1, err)
			}
		})
	}
	return g.Wait()
}

func filterProbes(checks []probe.Func) []probe.Func {
	filtered := make([]probe.Func, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}
