package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/trackify/internal/domain"
	"github.com/spec-kit/trackify/internal/rest"
	"github.com/spec-kit/trackify/internal/viewmodel"
)

var (
	createCustomer string
	createPhone    string
	createDevice   string
	createIssue    string

	updateStatusValue string
	updateDescription string
	updateLocation    string
	updateImage       string
)

var createTicketCmd = &cobra.Command{
	Use:   "create-ticket",
	Short: "Register a new repair ticket (vendor)",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		if _, err := requireSession(env); err != nil {
			return err
		}
		ticket, err := env.client.CreateTicket(cmd.Context(), rest.CreateTicketInput{
			CustomerName:  createCustomer,
			CustomerPhone: createPhone,
			DeviceModel:   createDevice,
			Issue:         createIssue,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created %s\n", ticket.TicketID)
		// The creation response is the one place the OTP surfaces; relay it
		// so the vendor can hand it to the customer.
		if ticket.OTP != "" {
			fmt.Printf("Customer OTP: %s\n", ticket.OTP)
		}
		return nil
	},
}

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "List tickets visible to the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		if _, err := requireSession(env); err != nil {
			return err
		}
		tickets, err := env.client.ListTickets(cmd.Context())
		if err != nil {
			return err
		}
		if len(tickets) == 0 {
			fmt.Println("No tickets.")
			return nil
		}
		for _, ticket := range tickets {
			center := "-"
			if ticket.AssignedServiceCenter != nil {
				center = ticket.AssignedServiceCenter.Name
			}
			fmt.Printf("%s  %-12s  %-20s  %s\n", ticket.TicketID, ticket.Status, ticket.DeviceModel, center)
		}
		return nil
	},
}

var ticketCmd = &cobra.Command{
	Use:   "ticket TICKET_ID",
	Short: "Show one ticket with its timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		if _, err := requireSession(env); err != nil {
			return err
		}
		result, err := env.client.GetTicket(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		view := viewmodel.NewTicketView(result.Ticket, result.Events)
		defer view.Close()
		ticket, events := view.Snapshot()
		printTicket(ticket)
		printTimeline(events)
		return nil
	},
}

var updateStatusCmd = &cobra.Command{
	Use:   "update-status TICKET_ID",
	Short: "Record a status change on a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		principal, err := requireSession(env)
		if err != nil {
			return err
		}

		status, err := domain.ParseTicketStatus(updateStatusValue)
		if err != nil {
			return fmt.Errorf("%v (choose from: %s)", err, joinStatuses(domain.StatusOrder))
		}
		// Surface the role's status menu before the round trip; the backend
		// enforces the same policy.
		if allowed := domain.RoleStatuses(principal.Role); allowed != nil && !containsStatus(allowed, status) {
			return fmt.Errorf("role %s may only set: %s", principal.Role, joinStatuses(allowed))
		}

		patch, err := env.client.UpdateStatus(cmd.Context(), args[0], rest.StatusUpdateInput{
			Status:      status,
			Description: updateDescription,
			Location:    updateLocation,
			Image:       updateImage,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s is now %s\n", patch.Ticket.TicketID, patch.Ticket.Status)
		return nil
	},
}

var deleteEventCmd = &cobra.Command{
	Use:   "delete-event TICKET_ID EVENT_ID",
	Short: "Remove a timeline entry from a ticket",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		if _, err := requireSession(env); err != nil {
			return err
		}
		if err := env.client.DeleteEvent(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("Event removed.")
		return nil
	},
}

func printTicket(ticket domain.Ticket) {
	fmt.Printf("%s  %s\n", ticket.TicketID, ticket.Status)
	fmt.Printf("  Device:   %s\n", ticket.DeviceModel)
	fmt.Printf("  Issue:    %s\n", ticket.Issue)
	fmt.Printf("  Customer: %s (%s)\n", ticket.CustomerName, ticket.CustomerPhone)
	if ticket.AssignedServiceCenter != nil {
		fmt.Printf("  Center:   %s, %s\n", ticket.AssignedServiceCenter.Name, ticket.AssignedServiceCenter.City)
	}
}

func printTimeline(events []domain.TimelineEvent) {
	if len(events) == 0 {
		return
	}
	fmt.Println("  Timeline (newest first):")
	for _, event := range events {
		when := "-"
		if event.Timestamp.Valid {
			when = event.Timestamp.Time.Format(time.RFC3339)
		}
		line := fmt.Sprintf("    %s  %-12s  %s", when, event.Status, event.Description)
		if event.Location != "" {
			line += "  @" + event.Location
		}
		fmt.Println(line)
	}
}

func joinStatuses(statuses []domain.TicketStatus) string {
	parts := make([]string, len(statuses))
	for i, status := range statuses {
		parts[i] = string(status)
	}
	return strings.Join(parts, ", ")
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func init() {
	createTicketCmd.Flags().StringVar(&createCustomer, "customer", "", "customer name")
	createTicketCmd.Flags().StringVar(&createPhone, "phone", "", "customer phone")
	createTicketCmd.Flags().StringVar(&createDevice, "device", "", "device model")
	createTicketCmd.Flags().StringVar(&createIssue, "issue", "", "reported issue")
	_ = createTicketCmd.MarkFlagRequired("customer")
	_ = createTicketCmd.MarkFlagRequired("phone")
	_ = createTicketCmd.MarkFlagRequired("device")
	_ = createTicketCmd.MarkFlagRequired("issue")

	updateStatusCmd.Flags().StringVar(&updateStatusValue, "status", "", "new status")
	updateStatusCmd.Flags().StringVar(&updateDescription, "description", "", "what happened")
	updateStatusCmd.Flags().StringVar(&updateLocation, "location", "", "where it happened")
	updateStatusCmd.Flags().StringVar(&updateImage, "image", "", "image URL")
	_ = updateStatusCmd.MarkFlagRequired("status")
	_ = updateStatusCmd.MarkFlagRequired("description")
	_ = updateStatusCmd.MarkFlagRequired("location")

	rootCmd.AddCommand(createTicketCmd, ticketsCmd, ticketCmd, updateStatusCmd, deleteEventCmd)
}
