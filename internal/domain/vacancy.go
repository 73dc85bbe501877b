package domain

import "fmt"

// VacancyOp is one of the simple editor's buttons.
type VacancyOp string

const (
	OpIncrement    VacancyOp = "increment"
	OpDecrement    VacancyOp = "decrement"
	OpSetFull      VacancyOp = "set_full"      // 0 rooms free
	OpSetAvailable VacancyOp = "set_available" // every room free
)

var VacancyOps = []VacancyOp{OpDecrement, OpIncrement, OpSetFull, OpSetAvailable}

func ParseVacancyOp(s string) (VacancyOp, error) {
	switch op := VacancyOp(s); op {
	case OpIncrement, OpDecrement, OpSetFull, OpSetAvailable:
		return op, nil
	}
	return "", fmt.Errorf("%w: unknown vacancy op %q", ErrInvalidInput, s)
}

// NextVacancies applies op to current within [0, capacity].
// ok is false when op would change nothing; callers must not write then.
func NextVacancies(op VacancyOp, current, capacity int) (next int, ok bool) {
	switch op {
	case OpIncrement:
		next = current + 1
	case OpDecrement:
		next = current - 1
	case OpSetFull:
		next = 0
	case OpSetAvailable:
		next = capacity
	default:
		return current, false
	}
	if next < 0 || next > capacity || next == current {
		return current, false
	}
	return next, true
}

// VacancyOpEnabled reports whether the button for op should be clickable.
func VacancyOpEnabled(op VacancyOp, current, capacity int) bool {
	_, ok := NextVacancies(op, current, capacity)
	return ok
}

// ValidVacancies reports whether v respects 0 <= v <= capacity.
func ValidVacancies(v, capacity int) bool { return v >= 0 && v <= capacity }
