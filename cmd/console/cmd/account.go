package cmd

import (
	"fmt"

	"github.com/jrsteele09/go-admin-console/auth"
	"github.com/spf13/cobra"
)

var (
	invIdentifier string
	invToken      string
	invPassword   string
	invPhone      string

	resetEmail    string
	resetID       string
	resetToken    string
	resetPassword string
)

var invitationCmd = &cobra.Command{
	Use:   "invitation",
	Short: "Work with invitations",
}

var invitationAcceptCmd = &cobra.Command{
	Use:   "accept",
	Short: "Accept an invitation and create the account",
	Long: `Create the invited account from the identifier and token in the invitation
link. This does not sign in; run "console login" afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		password, err := promptIfEmpty(cmd, invPassword, "Password: ")
		if err != nil {
			return err
		}
		err = a.Controller.AcceptInvitation(cmd.Context(), auth.AcceptInvitationInput{
			TokenIdentifier: invIdentifier,
			Token:           invToken,
			Password:        password,
			PhoneNumber:     invPhone,
		})
		if err != nil {
			return flowError(a.Controller.Snapshot(), auth.FlowInvitation, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Account created. Sign in with console login.")
		return nil
	},
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Request or complete a password reset",
}

var passwordRequestResetCmd = &cobra.Command{
	Use:   "request-reset",
	Short: "Email a password reset link",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Controller.RequestPasswordReset(cmd.Context(), resetEmail); err != nil {
			return flowError(a.Controller.Snapshot(), auth.FlowPasswordResetRequest, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "If an account exists for that address, a reset link is on its way.")
		return nil
	},
}

var passwordResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Set a new password from a reset link",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		password, err := promptIfEmpty(cmd, resetPassword, "New password: ")
		if err != nil {
			return err
		}
		if err := a.Controller.ResetPassword(cmd.Context(), resetID, resetToken, password); err != nil {
			return flowError(a.Controller.Snapshot(), auth.FlowPasswordResetConfirm, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Password updated. Sign in with console login.")
		return nil
	},
}

func init() {
	f := invitationAcceptCmd.Flags()
	f.StringVar(&invIdentifier, "identifier", "", "token identifier from the invitation link")
	f.StringVar(&invToken, "token", "", "token from the invitation link")
	f.StringVar(&invPassword, "password", "", "new password (read from stdin when omitted)")
	f.StringVar(&invPhone, "phone", "", "phone number in E.164 form, e.g. +447700900123")
	_ = invitationAcceptCmd.MarkFlagRequired("identifier")
	_ = invitationAcceptCmd.MarkFlagRequired("token")
	invitationCmd.AddCommand(invitationAcceptCmd)

	passwordRequestResetCmd.Flags().StringVar(&resetEmail, "email", "", "account email")
	_ = passwordRequestResetCmd.MarkFlagRequired("email")

	f = passwordResetCmd.Flags()
	f.StringVar(&resetID, "reset-id", "", "reset id from the reset link")
	f.StringVar(&resetToken, "token", "", "token from the reset link")
	f.StringVar(&resetPassword, "password", "", "new password (read from stdin when omitted)")
	_ = passwordResetCmd.MarkFlagRequired("reset-id")
	_ = passwordResetCmd.MarkFlagRequired("token")
	passwordCmd.AddCommand(passwordRequestResetCmd, passwordResetCmd)

	rootCmd.AddCommand(invitationCmd, passwordCmd)
}
