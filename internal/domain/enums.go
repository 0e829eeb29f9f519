package domain

import "strings"

// ShipmentStatus represents a node in the shipment workflow
type ShipmentStatus string

const (
	// PENDING - shipment record exists, nothing booked yet
	ShipmentStatusPending ShipmentStatus = "pending"
	// CONFIRMED - carrier/agent confirmed the booking
	ShipmentStatusConfirmed ShipmentStatus = "confirmed"
	// PREPARING - goods are being packed or consolidated at origin
	ShipmentStatusPreparing ShipmentStatus = "preparing"
	// IN_TRANSIT - goods left origin
	ShipmentStatusInTransit ShipmentStatus = "in_transit"
	// ARRIVED - goods reached destination; product lines get updated
	ShipmentStatusArrived ShipmentStatus = "arrived"
	// RECEIVED - goods checked into inventory
	ShipmentStatusReceived ShipmentStatus = "received"
	// EXCEPTION - customs hold, damage, misroute... may be recorded at any point, any number of times
	ShipmentStatusException ShipmentStatus = "exception"
)

// statusFlow is the canonical forward order. EXCEPTION is deliberately absent.
var statusFlow = []ShipmentStatus{
	ShipmentStatusPending,
	ShipmentStatusConfirmed,
	ShipmentStatusPreparing,
	ShipmentStatusInTransit,
	ShipmentStatusArrived,
	ShipmentStatusReceived,
}

// IsValid checks if the shipment status is a recognized label
func (s ShipmentStatus) IsValid() bool {
	return s == ShipmentStatusException || s.Position() >= 0
}

// Position returns the index of the status in the canonical chain, or -1 for
// EXCEPTION, the empty status and unknown labels.
func (s ShipmentStatus) Position() int {
	for i, st := range statusFlow {
		if st == s {
			return i
		}
	}
	return -1
}

// Label renders the status for humans: "in_transit" -> "in transit"
func (s ShipmentStatus) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// Statuses returns the canonical chain followed by EXCEPTION
func Statuses() []ShipmentStatus {
	out := make([]ShipmentStatus, 0, len(statusFlow)+1)
	out = append(out, statusFlow...)
	return append(out, ShipmentStatusException)
}

// ShippingMethod selects which mode-specific payload a shipment carries
type ShippingMethod string

const (
	ShippingMethodAir      ShippingMethod = "air"
	ShippingMethodSea      ShippingMethod = "sea"
	ShippingMethodStandard ShippingMethod = "standard"

	// Legacy alias, stored as standard
	ShippingMethodGround ShippingMethod = "ground"
)

// IsValid checks if the shipping method is valid
func (m ShippingMethod) IsValid() bool {
	switch m.Normalize() {
	case ShippingMethodAir, ShippingMethodSea, ShippingMethodStandard:
		return true
	default:
		return false
	}
}

// Normalize maps aliases onto the stored value
func (m ShippingMethod) Normalize() ShippingMethod {
	if m == ShippingMethodGround {
		return ShippingMethodStandard
	}
	return m
}

// TransitionRule names the rule a rejected status change broke
type TransitionRule string

const (
	RuleBackwardOrRepeat TransitionRule = "backward_or_repeat"
	RuleAlreadyRecorded  TransitionRule = "already_recorded"
	RuleUnknownStatus    TransitionRule = "unknown_status"
	RuleConcurrentUpdate TransitionRule = "concurrent_update"
)
