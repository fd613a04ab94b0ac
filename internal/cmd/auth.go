package cmd

import (
	"github.com/William2207/uteshop/cli/pkg/service"
	"github.com/spf13/cobra"
)

var (
	authEmail    string
	authPassword string
	authCode     string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Log in, register and manage your UTEShop session",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to UTEShop",
	Long:  "Authenticate with email and password. Missing values are prompted for.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewAuthService(rt).Login(cmd.Context(), authEmail, authPassword)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from UTEShop",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewAuthService(rt).Logout(cmd.Context())
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Display current authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewAuthService(rt).Me(cmd.Context())
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh authentication token",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewAuthService(rt).Refresh(cmd.Context())
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new UTEShop account",
	Long:  "Request a one-time code by email, then confirm it with your name and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewAuthService(rt).Register(cmd.Context(), authEmail)
	},
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Email a password reset code",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewAuthService(rt).ForgotPassword(cmd.Context(), authEmail)
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password with a reset code",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewAuthService(rt).ResetPassword(cmd.Context(), authEmail, authCode)
	},
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(meCmd)
	authCmd.AddCommand(refreshCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(forgotPasswordCmd)
	authCmd.AddCommand(resetPasswordCmd)

	for _, c := range []*cobra.Command{loginCmd, registerCmd, forgotPasswordCmd, resetPasswordCmd} {
		c.Flags().StringVarP(&authEmail, "email", "e", "", "Account email")
	}
	loginCmd.Flags().StringVarP(&authPassword, "password", "p", "", "Password (prompted when omitted)")
	resetPasswordCmd.Flags().StringVar(&authCode, "code", "", "Reset code from the email")
}
