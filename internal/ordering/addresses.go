package ordering

import (
	"context"
	"encoding/json"

	"github.com/Vatsa10/Zomatooo/internal/domain"
)

// Tool names on the ordering service for account-level operations.
const (
	ToolSavedAddresses = "get_saved_addresses_for_user"
	ToolBindPhone      = "bind_user_number"
	ToolVerifyPhone    = "bind_user_number_verify_code"
)

// SavedAddresses fetches the user's saved-address list. An empty list,
// a fetch error, or a malformed payload all yield an empty slice and a
// nil or non-nil error respectively; callers treat both the same way
// (session starts unresolved).
func SavedAddresses(ctx context.Context, svc Service) ([]domain.Location, error) {
	res, err := svc.Call(ctx, ToolSavedAddresses, map[string]any{})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Addresses []map[string]any `json:"addresses"`
	}
	if err := json.Unmarshal([]byte(res.Text), &payload); err != nil {
		return nil, err
	}

	locs := make([]domain.Location, 0, len(payload.Addresses))
	for _, addr := range payload.Addresses {
		locs = append(locs, domain.FromAddress(addr))
	}
	return locs, nil
}
