package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/internal/service"
)

var (
	listStatus string
	listLimit  int
	listOffset int

	advanceStatus   string
	advanceLocation string
	advanceNotes    string
	advanceKey      string
)

var shipmentsCmd = &cobra.Command{
	Use:   "shipments",
	Short: "Inspect shipments and move them through their statuses",
}

var shipmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List shipments, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := shipmentService()
		if err != nil {
			return err
		}
		recs, err := svc.List(cmd.Context(), domain.ShipmentFilter{
			Status: domain.ShipmentStatus(strings.ToLower(listStatus)),
			Limit:  listLimit,
			Offset: listOffset,
		})
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No shipments found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTRACKING\tSTATUS\tMETHOD\tCARRIER\tCREATED")
		for _, rec := range recs {
			carrier := "-"
			if rec.Carrier != nil {
				carrier = rec.Carrier.Name
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				rec.ID, rec.TrackingNumber, rec.Status, rec.ShippingMethod, carrier,
				rec.CreatedAt.Format(time.DateTime))
		}
		return w.Flush()
	},
}

var shipmentsEventsCmd = &cobra.Command{
	Use:   "events <shipment-id>",
	Short: "Print the status history of a shipment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid shipment id %q: %w", args[0], err)
		}
		svc, err := shipmentService()
		if err != nil {
			return err
		}
		history, err := svc.History(cmd.Context(), id)
		if err != nil {
			return err
		}

		for _, ev := range history {
			fmt.Printf("%s  %-12s %s\n", ev.Timestamp.Format(time.DateTime), ev.Status, ev.Description)
			if ev.Location != "" {
				fmt.Printf("    at %s\n", ev.Location)
			}
			for _, line := range strings.Split(ev.Notes, "\n") {
				if line != "" {
					fmt.Printf("    %s\n", line)
				}
			}
		}
		return nil
	},
}

var shipmentsAdvanceCmd = &cobra.Command{
	Use:   "advance <shipment-id>",
	Short: "Record a status change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid shipment id %q: %w", args[0], err)
		}
		svc, err := shipmentService()
		if err != nil {
			return err
		}
		rec, ev, err := svc.AdvanceStatus(actorContext(cmd.Context()), id, advanceUpdate())
		if err != nil {
			return err
		}
		fmt.Printf("Shipment %s is now %s (event %s)\n", rec.ID, rec.Status, ev.ID)
		return nil
	},
}

// advanceUpdate is the status change described by the advance flags
func advanceUpdate() service.StatusUpdate {
	return service.StatusUpdate{
		Status:         domain.ShipmentStatus(strings.ToLower(strings.TrimSpace(advanceStatus))),
		Location:       strings.TrimSpace(advanceLocation),
		Notes:          advanceNotes,
		IdempotencyKey: strings.TrimSpace(advanceKey),
	}
}

func init() {
	shipmentsListCmd.Flags().StringVar(&listStatus, "status", "", "only shipments in this status")
	shipmentsListCmd.Flags().IntVar(&listLimit, "limit", 50, "maximum rows")
	shipmentsListCmd.Flags().IntVar(&listOffset, "offset", 0, "rows to skip")

	shipmentsAdvanceCmd.Flags().StringVar(&advanceStatus, "status", "", "target status")
	shipmentsAdvanceCmd.Flags().StringVar(&advanceLocation, "location", "", "where the change happened")
	shipmentsAdvanceCmd.Flags().StringVar(&advanceNotes, "notes", "", "free text notes")
	shipmentsAdvanceCmd.Flags().StringVar(&advanceKey, "idempotency-key", "", "retry-safe key for this change")
	shipmentsAdvanceCmd.MarkFlagRequired("status")

	shipmentsCmd.AddCommand(shipmentsListCmd, shipmentsEventsCmd, shipmentsAdvanceCmd)
	rootCmd.AddCommand(shipmentsCmd)
}
