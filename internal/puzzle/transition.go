package puzzle

// #region transition
// Quantity returns how much would move when pouring from jar from into jar to:
// min(amounts[from], capacities[to]-amounts[to]). Self-pours and out-of-range
// indices move nothing. This is the single transition rule shared by the
// engine, the solver and the replay harness.
func Quantity(capacities []int, amounts State, from, to int) int {
	if from == to || !InRange(len(amounts), from) || !InRange(len(amounts), to) || len(capacities) != len(amounts) {
		return 0
	}
	q := min(amounts[from], capacities[to]-amounts[to])
	if q < 0 {
		return 0
	}
	return q
}

// InRange reports whether i is a valid index into n jars.
func InRange(n, i int) bool {
	return i >= 0 && i < n
}

// WithinBounds reports whether every amount lies in [0, capacity].
func WithinBounds(capacities []int, amounts State) bool {
	if len(capacities) != len(amounts) {
		return false
	}
	for i, a := range amounts {
		if a < 0 || a > capacities[i] {
			return false
		}
	}
	return true
}

// #endregion transition
