// Package feed resolves a viewer's feed scope into donation list filters.
package feed

import (
	"strings"

	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
)

// StatusAll selects every status in a filter.
const StatusAll = "all"

// Feed scopes. Available is the shared pile any NGO can still accept; the
// other two narrow the feed to the viewer's own slice of it.
const (
	ScopeAvailable = "available"
	ScopeMine      = "mine"
	ScopeAccepted  = "accepted"
)

// Query carries the raw feed inputs as they arrive from the client.
type Query struct {
	Scope  string
	Status string
	Search string
}

// Resolve turns a feed query into repository-level filters for the viewer.
// An empty scope defaults to the available pile, which pins status=pending
// unless the caller filters explicitly. The accepted scope is reserved for
// NGO accounts since only they hold accepted donations.
func Resolve(q Query, viewer donations.Actor) (donations.ListFilters, error) {
	filters := donations.ListFilters{Search: strings.TrimSpace(q.Search)}

	if raw := strings.TrimSpace(strings.ToLower(q.Status)); raw != "" && raw != StatusAll {
		status, err := enums.ParseFoodStatus(raw)
		if err != nil {
			return donations.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}

	switch strings.TrimSpace(strings.ToLower(q.Scope)) {
	case "", ScopeAvailable:
		if filters.Status == nil {
			pending := enums.FoodStatusPending
			filters.Status = &pending
		}
	case ScopeMine:
		uid := viewer.UserID
		filters.CreatorUID = &uid
	case ScopeAccepted:
		if viewer.Role != enums.UserRoleNGO {
			return donations.ListFilters{}, pkgerrors.New(pkgerrors.CodeForbidden, "scope reserved for ngo accounts")
		}
		uid := viewer.UserID
		filters.NGOUID = &uid
	default:
		return donations.ListFilters{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid scope")
	}

	return filters, nil
}
