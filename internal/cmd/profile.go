package cmd

import (
	"github.com/William2207/uteshop/cli/pkg/service"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Profile commands",
	Long:  "View and edit your profile, password, avatar and addresses",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewProfileService(rt).Show(cmd.Context())
	},
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit name, phone and address",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewProfileService(rt).Edit(cmd.Context())
	},
}

var profilePasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewProfileService(rt).Password(cmd.Context())
	},
}

var profileAvatarCmd = &cobra.Command{
	Use:   "avatar <image-file>",
	Short: "Upload a profile picture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewProfileService(rt).Avatar(cmd.Context(), args[0])
	},
}

var addressCmd = &cobra.Command{
	Use:     "address",
	Aliases: []string{"addresses"},
	Short:   "Manage shipping addresses",
}

var addressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewProfileService(rt).Addresses(cmd.Context())
	},
}

var addressAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an address",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewProfileService(rt).AddAddress(cmd.Context())
	},
}

var addressEditCmd = &cobra.Command{
	Use:   "edit <address-id>",
	Short: "Edit an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewProfileService(rt).EditAddress(cmd.Context(), args[0])
	},
}

var addressDeleteCmd = &cobra.Command{
	Use:     "delete <address-id>",
	Aliases: []string{"rm"},
	Short:   "Delete an address",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewProfileService(rt).DeleteAddress(cmd.Context(), args[0])
	},
}

var addressDefaultCmd = &cobra.Command{
	Use:   "default <address-id>",
	Short: "Make an address the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		return service.NewProfileService(rt).SetDefaultAddress(cmd.Context(), args[0])
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileEditCmd)
	profileCmd.AddCommand(profilePasswordCmd)
	profileCmd.AddCommand(profileAvatarCmd)
	profileCmd.AddCommand(addressCmd)

	addressCmd.AddCommand(addressListCmd)
	addressCmd.AddCommand(addressAddCmd)
	addressCmd.AddCommand(addressEditCmd)
	addressCmd.AddCommand(addressDeleteCmd)
	addressCmd.AddCommand(addressDefaultCmd)
}
