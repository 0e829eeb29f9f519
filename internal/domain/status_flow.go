package domain

// IsValidTransition reports whether requested may follow current in the
// canonical ordering. EXCEPTION is always reachable. An empty current status
// sits before PENDING.
func IsValidTransition(current, requested ShipmentStatus) bool {
	if requested == ShipmentStatusException {
		return true
	}
	to := requested.Position()
	if to < 0 {
		return false
	}
	return to > current.Position()
}

// HasStatusBeenUsed reports whether any event in history already carries
// status. EXCEPTION may recur, so it is never considered used.
func HasStatusBeenUsed(status ShipmentStatus, history []*ShipmentEvent) bool {
	if status == ShipmentStatusException {
		return false
	}
	for _, ev := range history {
		if ev != nil && ev.Status == status {
			return true
		}
	}
	return false
}

// BaselineStatus is the status forward progress is measured from. While a
// shipment sits in EXCEPTION the baseline is the latest non-exception status
// in its history.
func BaselineStatus(current ShipmentStatus, history []*ShipmentEvent) ShipmentStatus {
	if current != ShipmentStatusException {
		return current
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i] != nil && history[i].Status != ShipmentStatusException {
			return history[i].Status
		}
	}
	return ""
}

// CheckTransition applies both workflow rules and returns the first one the
// requested status breaks, or "" when the change is allowed.
func CheckTransition(current, requested ShipmentStatus, history []*ShipmentEvent) TransitionRule {
	if !requested.IsValid() {
		return RuleUnknownStatus
	}
	baseline := BaselineStatus(current, history)
	if !IsValidTransition(baseline, requested) {
		if requested == baseline {
			return RuleAlreadyRecorded
		}
		return RuleBackwardOrRepeat
	}
	if HasStatusBeenUsed(requested, history) {
		return RuleAlreadyRecorded
	}
	return ""
}

// NextStatuses lists every status CheckTransition would currently accept
func NextStatuses(current ShipmentStatus, history []*ShipmentEvent) []ShipmentStatus {
	var out []ShipmentStatus
	for _, st := range Statuses() {
		if CheckTransition(current, st, history) == "" {
			out = append(out, st)
		}
	}
	return out
}
