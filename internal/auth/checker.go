package auth

import (
	"context"
	"fmt"
)

// AdminCheckerInterface abstracts the admin membership check so handlers
// can be tested with a mock.
type AdminCheckerInterface interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	AdminIDs() []int64
}

// AdminChecker answers admin membership from the configured id list.
type AdminChecker struct {
	ids     map[int64]struct{}
	ordered []int64
}

// NewAdminChecker creates a new AdminChecker.
// It requires at least one configured administrator id.
func NewAdminChecker(adminIDs []int64) (*AdminChecker, error) {
	if len(adminIDs) == 0 {
		return nil, fmt.Errorf("admin id list cannot be empty")
	}
	ids := make(map[int64]struct{}, len(adminIDs))
	ordered := make([]int64, 0, len(adminIDs))
	for _, id := range adminIDs {
		if _, seen := ids[id]; seen {
			continue
		}
		ids[id] = struct{}{}
		ordered = append(ordered, id)
	}
	return &AdminChecker{ids: ids, ordered: ordered}, nil
}

// IsAdmin checks whether the user is a configured administrator.
func (ac *AdminChecker) IsAdmin(_ context.Context, userID int64) (bool, error) {
	_, ok := ac.ids[userID]
	return ok, nil
}

// AdminIDs returns the configured administrator ids in configuration order.
func (ac *AdminChecker) AdminIDs() []int64 {
	out := make([]int64, len(ac.ordered))
	copy(out, ac.ordered)
	return out
}
