package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var centersVerifiedOnly bool

var centersCmd = &cobra.Command{
	Use:   "centers",
	Short: "List service centers",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		if _, err := requireSession(env); err != nil {
			return err
		}
		centers, err := env.client.ListServiceCenters(cmd.Context(), centersVerifiedOnly)
		if err != nil {
			return err
		}
		if len(centers) == 0 {
			fmt.Println("No service centers.")
			return nil
		}
		for _, center := range centers {
			mark := " "
			if center.Verified {
				mark = "*"
			}
			fmt.Printf("%s %s  %-24s  %s\n", mark, center.ID, center.Name, center.City)
		}
		return nil
	},
}

var verifyCenterCmd = &cobra.Command{
	Use:   "verify-center CENTER_ID",
	Short: "Mark a service center verified (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		if _, err := requireSession(env); err != nil {
			return err
		}
		if err := env.client.VerifyServiceCenter(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Center verified.")
		return nil
	},
}

func init() {
	centersCmd.Flags().BoolVar(&centersVerifiedOnly, "verified", false, "show only verified centers")

	rootCmd.AddCommand(centersCmd, verifyCenterCmd)
}
