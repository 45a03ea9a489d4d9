package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/trackify/internal/domain"
	"github.com/spec-kit/trackify/internal/push"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream push events from the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		router := push.NewRouter(env.logger)
		defer router.Close()

		disposeTickets := router.SubscribeTicket(printingConsumer{})
		defer disposeTickets()
		disposeRequests := router.SubscribeJobRequests(func(signal push.JobRequestSignal) {
			if signal.Status == "" {
				fmt.Printf("[request] new request %s\n", signal.RequestID)
				return
			}
			fmt.Printf("[request] %s is now %s\n", signal.RequestID, signal.Status)
		})
		defer disposeRequests()
		disposeCenters := router.SubscribeCenterVerification(func(change push.CenterVerification) {
			fmt.Printf("[center] %s verified=%t\n", change.CenterID, change.Verified)
		})
		defer disposeCenters()

		fmt.Printf("Watching %s (Ctrl-C to stop)...\n", env.cfg.Client.PushURL)
		socket := push.NewSocket(env.cfg.Client.PushURL, router, env.logger)
		return socket.Run(cmd.Context())
	},
}

// printingConsumer matches every ticket and prints each patch instead of
// holding state.
type printingConsumer struct{}

func (printingConsumer) Matches(string) bool { return true }

func (printingConsumer) ApplyStatusPatch(status domain.TicketStatus, event domain.TimelineEvent) {
	if event.TicketID == "" {
		return
	}
	fmt.Printf("[ticket] %s -> %s: %s\n", event.TicketID, status, event.Description)
}

func (printingConsumer) ApplyAssignment(center domain.ServiceCenterRef) {
	fmt.Printf("[ticket] assigned to %s (%s)\n", center.Name, center.City)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
