package donation

var transitions = map[Status][]Status{
	StatusPledged:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusInTransit},
	StatusInTransit: {StatusDelivered},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AppliesOn reports whether moving to status applies a not yet applied
// donation to its supply line under policy.
func AppliesOn(policy Policy, to Status) bool {
	return policy == ApplyOnDelivery && to == StatusDelivered
}
