package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/trackify/internal/rest"
)

var (
	loginEmail    string
	loginPassword string

	registerName     string
	registerEmail    string
	registerPassword string
	registerRole     string
	registerCity     string
	registerPhone    string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		result, err := env.client.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return err
		}
		if err := saveStoredSession(&storedSession{Token: result.Token, Principal: result.Principal}); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (%s)\n", result.Principal.Name, result.Principal.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := clearStoredSession(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		result, err := env.client.Register(cmd.Context(), rest.RegisterInput{
			Name:     registerName,
			Email:    registerEmail,
			Password: registerPassword,
			Role:     registerRole,
			City:     registerCity,
			Phone:    registerPhone,
		})
		if err != nil {
			return err
		}
		if err := saveStoredSession(&storedSession{Token: result.Token, Principal: result.Principal}); err != nil {
			return err
		}
		fmt.Printf("Registered %s (%s)\n", result.Principal.Name, result.Principal.Role)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringVar(&registerName, "name", "", "display name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "account password")
	registerCmd.Flags().StringVar(&registerRole, "role", "vendor", "account role (vendor, serviceCenter, admin)")
	registerCmd.Flags().StringVar(&registerCity, "city", "", "service center city")
	registerCmd.Flags().StringVar(&registerPhone, "phone", "", "service center phone")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd)
}
