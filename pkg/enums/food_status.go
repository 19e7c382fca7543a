package enums

import "fmt"

// FoodStatus tracks the donation lifecycle of a posted food item.
type FoodStatus string

const (
	FoodStatusPending   FoodStatus = "pending"
	FoodStatusAccepted  FoodStatus = "accepted"
	FoodStatusPickup    FoodStatus = "pickup"
	FoodStatusInTransit FoodStatus = "in_transit"
	FoodStatusDonated   FoodStatus = "donated"
)

// validFoodStatuses is ordered: each status may only advance to its successor.
var validFoodStatuses = []FoodStatus{
	FoodStatusPending,
	FoodStatusAccepted,
	FoodStatusPickup,
	FoodStatusInTransit,
	FoodStatusDonated,
}

// String implements fmt.Stringer.
func (f FoodStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FoodStatus.
func (f FoodStatus) IsValid() bool {
	for _, candidate := range validFoodStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// Rank returns the position of the status in the lifecycle, or -1 if unknown.
func (f FoodStatus) Rank() int {
	for i, candidate := range validFoodStatuses {
		if candidate == f {
			return i
		}
	}
	return -1
}

// Next returns the successor status. ok is false for donated (terminal) and
// unknown values.
func (f FoodStatus) Next() (FoodStatus, bool) {
	rank := f.Rank()
	if rank < 0 || rank+1 >= len(validFoodStatuses) {
		return "", false
	}
	return validFoodStatuses[rank+1], true
}

// IsTerminal reports whether no further transition is defined.
func (f FoodStatus) IsTerminal() bool {
	return f == FoodStatusDonated
}

// FoodStatusValues returns the lifecycle statuses in pipeline order.
func FoodStatusValues() []FoodStatus {
	out := make([]FoodStatus, len(validFoodStatuses))
	copy(out, validFoodStatuses)
	return out
}

// ParseFoodStatus converts raw input into a FoodStatus.
func ParseFoodStatus(value string) (FoodStatus, error) {
	for _, candidate := range validFoodStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid food status %q", value)
}
