package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/trackify/internal/domain"
	"github.com/spec-kit/trackify/internal/gate"
	"github.com/spec-kit/trackify/internal/push"
)

var (
	trackOTP    string
	trackFollow bool
)

var trackCmd = &cobra.Command{
	Use:   "track TICKET_ID",
	Short: "View a ticket as its customer, gated by OTP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		router := push.NewRouter(env.logger)
		defer router.Close()

		g := gate.New(env.client, router, env.logger)
		tracked, err := g.Verify(cmd.Context(), args[0], trackOTP)
		if err != nil {
			return err
		}
		defer tracked.Close()

		ticket, events := tracked.View.Snapshot()
		printTicket(ticket)
		printTimeline(events)

		if !trackFollow {
			return nil
		}

		// Follow mode: keep the view live and re-render on every push that
		// lands on it. Verification is not repeated per event.
		updates := make(chan struct{}, 1)
		disposeNotify := router.SubscribeTicket(&notifyConsumer{ticketID: ticket.TicketID, ch: updates})
		defer disposeNotify()

		socket := push.NewSocket(env.cfg.Client.PushURL, router, env.logger)
		go func() { _ = socket.Run(cmd.Context()) }()

		fmt.Println("\nWatching for updates (Ctrl-C to stop)...")
		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case <-updates:
				ticket, events := tracked.View.Snapshot()
				fmt.Println()
				printTicket(ticket)
				printTimeline(events)
			}
		}
	},
}

// notifyConsumer nudges a channel whenever a matching patch arrives; the
// actual state lives in the TicketView subscribed alongside it.
type notifyConsumer struct {
	ticketID string
	ch       chan struct{}
}

func (n *notifyConsumer) Matches(ticketID string) bool { return ticketID == n.ticketID }

func (n *notifyConsumer) ApplyStatusPatch(domain.TicketStatus, domain.TimelineEvent) {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

func (n *notifyConsumer) ApplyAssignment(domain.ServiceCenterRef) {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

var resendOTPCmd = &cobra.Command{
	Use:   "resend-otp TICKET_ID",
	Short: "Ask the backend to re-send a ticket's OTP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		router := push.NewRouter(env.logger)
		defer router.Close()
		message, err := gate.New(env.client, router, env.logger).ResendOTP(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(message)
		return nil
	},
}

func init() {
	trackCmd.Flags().StringVar(&trackOTP, "otp", "", "6-digit one-time password")
	trackCmd.Flags().BoolVar(&trackFollow, "follow", false, "keep watching for live updates")
	_ = trackCmd.MarkFlagRequired("otp")

	rootCmd.AddCommand(trackCmd, resendOTPCmd)
}
