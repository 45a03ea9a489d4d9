package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/trackify/internal/domain"
	"github.com/spec-kit/trackify/internal/push"
	"github.com/spec-kit/trackify/internal/rest"
	"github.com/spec-kit/trackify/internal/viewmodel"
	apperrors "github.com/spec-kit/trackify/pkg/util"
)

var (
	requestTicketID string
	requestCenterID string
	requestNotes    string

	requestsAcceptedOnly bool
	requestsFollow       bool
)

var sendRequestCmd = &cobra.Command{
	Use:   "send-request",
	Short: "Propose a ticket to a service center (vendor)",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		if _, err := requireSession(env); err != nil {
			return err
		}
		request, err := env.client.CreateJobRequest(cmd.Context(), rest.JobRequestInput{
			TicketID:        requestTicketID,
			ServiceCenterID: requestCenterID,
			Notes:           requestNotes,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Request %s sent to %s (%s)\n", request.ID, request.ServiceCenter.Name, request.Status)
		return nil
	},
}

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List job requests for the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		principal, err := requireSession(env)
		if err != nil {
			return err
		}

		list := viewmodel.NewJobRequestList(func(ctx context.Context) ([]domain.JobRequest, error) {
			return env.client.ListJobRequests(ctx, principal.Role)
		})
		defer list.Close()
		if err := list.Refresh(cmd.Context()); err != nil {
			return err
		}
		printRequests(list, principal.Role)

		if !requestsFollow {
			return nil
		}

		// Follow mode: a push signal is a hint, not a record, so each one
		// triggers a full re-fetch of the list.
		router := push.NewRouter(env.logger)
		defer router.Close()
		signals := make(chan struct{}, 1)
		dispose := router.SubscribeJobRequests(func(push.JobRequestSignal) {
			select {
			case signals <- struct{}{}:
			default:
			}
		})
		defer dispose()

		socket := push.NewSocket(env.cfg.Client.PushURL, router, env.logger)
		go func() { _ = socket.Run(cmd.Context()) }()

		fmt.Println("\nWatching for updates (Ctrl-C to stop)...")
		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case <-signals:
				if err := list.Refresh(cmd.Context()); err != nil {
					env.logger.Warn("request list refresh failed", zap.Error(err))
					continue
				}
				fmt.Println()
				printRequests(list, principal.Role)
			}
		}
	},
}

func printRequests(list *viewmodel.JobRequestList, role domain.Role) {
	requests := list.Requests()
	if requestsAcceptedOnly {
		requests = list.Accepted()
	}
	if len(requests) == 0 {
		fmt.Println("No requests.")
		return
	}
	for _, request := range requests {
		counterpart := request.ServiceCenter.Name
		if role == domain.RoleServiceCenter {
			counterpart = request.VendorName
		}
		fmt.Printf("%s  %-8s  %s  %-20s  %s  %s\n",
			request.ID, request.Status, request.TicketID, request.DeviceModel,
			counterpart, request.CreatedAt.Format(time.RFC3339))
	}
}

var decideCmd = &cobra.Command{
	Use:   "decide REQUEST_ID (accept|reject)",
	Short: "Accept or reject a pending job request (service center)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		principal, err := requireSession(env)
		if err != nil {
			return err
		}

		var status domain.JobRequestStatus
		switch args[1] {
		case "accept":
			status = domain.RequestAccepted
		case "reject":
			status = domain.RequestRejected
		default:
			return fmt.Errorf("decision must be accept or reject, got %q", args[1])
		}

		list := viewmodel.NewJobRequestList(func(ctx context.Context) ([]domain.JobRequest, error) {
			return env.client.ListJobRequests(ctx, principal.Role)
		})
		defer list.Close()
		if err := list.Refresh(cmd.Context()); err != nil {
			return err
		}

		request, err := env.client.DecideJobRequest(cmd.Context(), args[0], status)
		if err != nil {
			if apperrors.IsConflict(err) {
				return fmt.Errorf("request already decided; refresh with `trackify requests`")
			}
			return err
		}
		list.ApplyDecision(request.ID, request.Status)

		fmt.Printf("Request %s %s\n", request.ID, request.Status)
		if request.Status == domain.RequestAccepted {
			fmt.Printf("Ticket %s is now assigned to you.\n", request.TicketID)
		}
		return nil
	},
}

func init() {
	sendRequestCmd.Flags().StringVar(&requestTicketID, "ticket", "", "ticket id (TRK-...)")
	sendRequestCmd.Flags().StringVar(&requestCenterID, "center", "", "service center id")
	sendRequestCmd.Flags().StringVar(&requestNotes, "notes", "", "note for the center")
	_ = sendRequestCmd.MarkFlagRequired("ticket")
	_ = sendRequestCmd.MarkFlagRequired("center")

	requestsCmd.Flags().BoolVar(&requestsAcceptedOnly, "accepted", false, "show only accepted requests")
	requestsCmd.Flags().BoolVar(&requestsFollow, "follow", false, "keep the list live on push updates")

	rootCmd.AddCommand(sendRequestCmd, requestsCmd, decideCmd)
}
