package donations

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
)

// Actor identifies who is requesting an operation. Identity is always passed
// explicitly; nothing is read from ambient state.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

type ownership int

const (
	ownershipNone ownership = iota
	ownershipCreator
	ownershipAssignedNGO
)

type transitionRule struct {
	from  enums.FoodStatus
	to    enums.FoodStatus
	role  enums.UserRole
	owner ownership
}

// transitionRules is the complete set of legal lifecycle moves. Any
// (from, to) pair not listed here is rejected before any write.
var transitionRules = []transitionRule{
	{from: enums.FoodStatusPending, to: enums.FoodStatusAccepted, role: enums.UserRoleNGO, owner: ownershipNone},
	{from: enums.FoodStatusAccepted, to: enums.FoodStatusPickup, role: enums.UserRoleDonor, owner: ownershipCreator},
	{from: enums.FoodStatusPickup, to: enums.FoodStatusInTransit, role: enums.UserRoleNGO, owner: ownershipAssignedNGO},
	{from: enums.FoodStatusInTransit, to: enums.FoodStatusDonated, role: enums.UserRoleNGO, owner: ownershipAssignedNGO},
}

func findRule(from, to enums.FoodStatus) *transitionRule {
	for i := range transitionRules {
		if transitionRules[i].from == from && transitionRules[i].to == to {
			return &transitionRules[i]
		}
	}
	return nil
}

// transitionPlan captures the column mutations a legal transition applies.
type transitionPlan struct {
	updates map[string]any
	noop    bool
}

// planTransition validates the requested move against the guard table and
// computes the mutations. The record is not modified.
func planTransition(record *models.FoodRecord, target enums.FoodStatus, actor Actor, ngoSnapshot *models.IdentitySnapshot, now time.Time) (*transitionPlan, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}
	if record.Status == target {
		return &transitionPlan{noop: true}, nil
	}

	rule := findRule(record.Status, target)
	if rule == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transition not allowed from current status")
	}
	if actor.Role != rule.role {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot perform this transition")
	}

	switch rule.owner {
	case ownershipCreator:
		if record.CreatedBy.UID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the donation creator can perform this transition")
		}
	case ownershipAssignedNGO:
		if record.NGODetails == nil || record.NGODetails.UID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the accepting ngo can perform this transition")
		}
	}

	updates := map[string]any{
		"status":     target,
		"updated_at": now,
	}
	switch target {
	case enums.FoodStatusAccepted:
		if ngoSnapshot == nil {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "ngo identity unavailable")
		}
		// Map updates skip gorm serializers, so the snapshot is marshaled here.
		raw, err := json.Marshal(ngoSnapshot)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode ngo snapshot")
		}
		updates["ngo_details"] = string(raw)
		updates["accepted_at"] = now
	case enums.FoodStatusPickup:
		updates["picked_up_at"] = now
	case enums.FoodStatusInTransit:
		updates["in_transit_at"] = now
	case enums.FoodStatusDonated:
		updates["donated_at"] = now
	}

	return &transitionPlan{updates: updates}, nil
}
