package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
)

// noteField renders one optional StatusUpdate field. An empty value means the
// field was not supplied. Salient fields also appear in the description.
type noteField struct {
	label   string
	value   func(u *StatusUpdate) string
	salient bool
}

var noteFields = []noteField{
	{"Transit Type", func(u *StatusUpdate) string { return u.TransitType }, true},
	{"Vehicle", func(u *StatusUpdate) string { return u.VehicleNumber }, true},
	{"Driver", func(u *StatusUpdate) string { return u.DriverName }, true},
	{"Driver Phone", func(u *StatusUpdate) string { return u.DriverPhone }, false},
	{"Flight", func(u *StatusUpdate) string {
		if u.Air == nil {
			return ""
		}
		return u.Air.FlightNumber
	}, true},
	{"Vessel", func(u *StatusUpdate) string {
		if u.Sea == nil {
			return ""
		}
		return u.Sea.VesselName
	}, true},
	{"From", func(u *StatusUpdate) string { return u.DepartureLocation }, true},
	{"To", func(u *StatusUpdate) string { return u.ArrivalLocation }, true},
	{"ETA", func(u *StatusUpdate) string { return formatTime(u.EstimatedArrival) }, true},
	{"Delivery Method", func(u *StatusUpdate) string { return u.DeliveryMethod }, true},
	{"Recipient", func(u *StatusUpdate) string { return u.RecipientName }, true},
	{"Recipient Phone", func(u *StatusUpdate) string { return u.RecipientPhone }, false},
	{"Exception", func(u *StatusUpdate) string { return u.ExceptionType }, true},
	{"Exception Details", func(u *StatusUpdate) string { return u.ExceptionDescription }, false},
	{"Resolution Plan", func(u *StatusUpdate) string { return u.ResolutionPlan }, false},

	// sea
	{"Port of Loading", seaField(func(d *domain.SeaDetails) string { return d.PortOfLoading }), false},
	{"Port of Discharge", seaField(func(d *domain.SeaDetails) string { return d.PortOfDischarge }), false},
	{"Container", seaField(func(d *domain.SeaDetails) string { return d.ContainerNumber }), false},
	{"Bill of Lading", seaField(func(d *domain.SeaDetails) string { return d.BillOfLading }), false},
	{"Departure Date", seaField(func(d *domain.SeaDetails) string { return formatTime(d.DepartureDate) }), false},
	{"Arrival Date", seaField(func(d *domain.SeaDetails) string { return formatTime(d.ArrivalDate) }), false},

	// air
	{"Departure Airport", airField(func(d *domain.AirDetails) string { return d.DepartureAirport }), false},
	{"Arrival Airport", airField(func(d *domain.AirDetails) string { return d.ArrivalAirport }), false},
	{"Departure Time", airField(func(d *domain.AirDetails) string { return formatTime(d.DepartureTime) }), false},
	{"Arrival Time", airField(func(d *domain.AirDetails) string { return formatTime(d.ArrivalTime) }), false},
	{"Cargo Type", airField(func(d *domain.AirDetails) string { return d.CargoType }), false},
	{"Item Description", airField(func(d *domain.AirDetails) string { return d.ItemDescription }), false},
	{"Quantity", airField(func(d *domain.AirDetails) string {
		if d.Quantity == nil {
			return ""
		}
		return strconv.Itoa(*d.Quantity)
	}), false},
	{"Unit Price", airField(func(d *domain.AirDetails) string { return formatMoney(d.UnitPrice) }), false},
	{"Total Cost", airField(func(d *domain.AirDetails) string { return formatMoney(d.TotalCost) }), false},

	// ground
	{"Departure Terminal", groundField(func(d *domain.GroundDetails) string { return d.DepartureTerminal }), false},
	{"Arrival Terminal", groundField(func(d *domain.GroundDetails) string { return d.ArrivalTerminal }), false},
	{"Route", groundField(func(d *domain.GroundDetails) string { return d.RouteNumber }), false},

	// cargo and costs
	{"Cargo Boxes", func(u *StatusUpdate) string {
		if len(u.CargoBoxes) == 0 {
			return ""
		}
		return strconv.Itoa(len(u.CargoBoxes)) + " (" + domain.TotalCBM(u.CargoBoxes).String() + " CBM)"
	}, false},
	{"Price per CBM", func(u *StatusUpdate) string { return formatMoney(u.PricePerCBM) }, false},
	{"Freight Cost", func(u *StatusUpdate) string { return formatMoney(u.FreightCost) }, false},
	{"Delivery Cost", func(u *StatusUpdate) string { return formatMoney(u.DeliveryCost) }, false},
	{"Insurance Cost", func(u *StatusUpdate) string { return formatMoney(u.InsuranceCost) }, false},
	{"Customs Cost", func(u *StatusUpdate) string { return formatMoney(u.CustomsCost) }, false},
	{"Handling Cost", func(u *StatusUpdate) string { return formatMoney(u.HandlingCost) }, false},
	{"Currency", func(u *StatusUpdate) string { return strings.ToUpper(u.Currency) }, false},
	{"Estimated Delivery", func(u *StatusUpdate) string { return formatTime(u.EstimatedDelivery) }, false},
	{"Actual Delivery", func(u *StatusUpdate) string { return formatTime(u.ActualDelivery) }, false},
}

func seaField(f func(*domain.SeaDetails) string) func(*StatusUpdate) string {
	return func(u *StatusUpdate) string {
		if u.Sea == nil {
			return ""
		}
		return f(u.Sea)
	}
}

func airField(f func(*domain.AirDetails) string) func(*StatusUpdate) string {
	return func(u *StatusUpdate) string {
		if u.Air == nil {
			return ""
		}
		return f(u.Air)
	}
}

func groundField(f func(*domain.GroundDetails) string) func(*StatusUpdate) string {
	return func(u *StatusUpdate) string {
		if u.Ground == nil {
			return ""
		}
		return f(u.Ground)
	}
}

// describeStatus renders the event description, e.g.
// "In Transit (Transit Type: road, Vehicle: KBX 123A)"
func describeStatus(u *StatusUpdate) string {
	// Casers keep state, so one per call
	title := cases.Title(language.English).String(u.Status.Label())

	var parts []string
	for _, f := range noteFields {
		if !f.salient {
			continue
		}
		if v := strings.TrimSpace(f.value(u)); v != "" {
			parts = append(parts, f.label+": "+v)
		}
	}
	if len(parts) == 0 {
		return title
	}
	return title + " (" + strings.Join(parts, ", ") + ")"
}

// composeNotes renders one "Label: value" line per supplied field followed by
// the free-text notes
func composeNotes(u *StatusUpdate) string {
	var lines []string
	for _, f := range noteFields {
		if v := strings.TrimSpace(f.value(u)); v != "" {
			lines = append(lines, f.label+": "+v)
		}
	}

	free := strings.TrimSpace(u.Notes)
	if len(lines) == 0 {
		return free
	}
	notes := strings.Join(lines, "\n")
	if free != "" {
		notes += "\n\nAdditional Notes:\n" + free
	}
	return notes
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

func formatMoney(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}
