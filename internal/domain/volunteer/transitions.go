package volunteer

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusArrived, StatusCancelled},
	StatusArrived:   {StatusCompleted},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CounterDelta is the change a legal transition applies to the grid's
// volunteer_registered counter.
func CounterDelta(from, to Status) int {
	switch {
	case from == StatusPending && to == StatusConfirmed:
		return 1
	case from == StatusConfirmed && to == StatusCancelled:
		return -1
	default:
		return 0
	}
}
