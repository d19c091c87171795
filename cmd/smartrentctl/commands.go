package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/smartrent-bridge/auth"
	"github.com/jrsteele09/smartrent-bridge/internal/app"
	"github.com/jrsteele09/smartrent-bridge/internal/config"
	"github.com/jrsteele09/smartrent-bridge/internal/logging"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	failColor    = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	headerColor  = color.New(color.FgCyan, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

type rootOptions struct {
	envFile  string
	logLevel string
}

func BuildRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:          "smartrentctl",
		Short:        "Manage the SmartRent session used by the bridge",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(opts.envFile)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "environment file to load")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	cmd.AddCommand(
		buildLoginCmd(&opts),
		buildLogoutCmd(&opts),
		buildStatusCmd(&opts),
		buildDevicesCmd(&opts),
	)
	return cmd
}

func newApp(cmd *cobra.Command, opts *rootOptions) (*app.App, error) {
	logger, _ := logging.New(logging.Options{Level: opts.logLevel, Console: true, Output: cmd.ErrOrStderr()})
	return app.New(cmd.Context(), config.New(), logger)
}

func buildLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password, tfaCode string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			creds := app.Credentials(a.Config)
			if email != "" {
				creds.Login.Email = email
			}
			if password != "" {
				creds.Login.Password = password
			}
			if tfaCode != "" {
				creds.TwoFactorCode = tfaCode
			}

			_, err = a.Sessions.Login(cmd.Context(), creds)
			outcome := auth.ClassifyLoginError(err)
			out := cmd.OutOrStdout()
			switch outcome {
			case auth.LoginSucceeded:
				successColor.Fprintf(out, "Logged in. ")
				fmt.Fprintf(out, "Saved session to %s\n", a.SessionStore.Path())
				return nil
			case auth.LoginTwoFactorRequired:
				warnColor.Fprintln(out, outcome.Message())
				dimColor.Fprintln(out, "Run login again with --tfa-code once the code arrives.")
			default:
				failColor.Fprintln(out, outcome.Message())
			}
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "SmartRent email (default: SMARTRENT_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "SmartRent password (default: SMARTRENT_PASSWORD)")
	cmd.Flags().StringVar(&tfaCode, "tfa-code", "", "two-factor code (default: SMARTRENT_TFA_CODE)")
	return cmd
}

func buildLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			if err := a.Sessions.Logout(); err != nil {
				failColor.Fprintln(cmd.OutOrStdout(), "Failed to delete session")
				return err
			}
			successColor.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func buildStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			s, err := a.SessionStore.Load()
			if err != nil {
				failColor.Fprintln(out, "Session file unreadable")
				return err
			}
			if s == nil {
				warnColor.Fprintln(out, "No session")
				dimColor.Fprintln(out, a.SessionStore.Path())
				return nil
			}

			headerColor.Fprintln(out, "SmartRent session")
			fmt.Fprintf(out, "  file:    %s\n", a.SessionStore.Path())
			fmt.Fprintf(out, "  user:    %d\n", s.UserID)
			fmt.Fprintf(out, "  expires: %s ", s.Expires.Local().Format(time.RFC3339))
			if s.IsFresh(time.Now()) {
				successColor.Fprintln(out, "(valid)")
			} else {
				warnColor.Fprintln(out, "(expired)")
			}
			if !s.CanRefresh() {
				warnColor.Fprintln(out, "  no refresh token, the next use will log in again")
			}
			return nil
		},
	}
}

func buildDevicesCmd(opts *rootOptions) *cobra.Command {
	var unitName string

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List the devices in the unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			if unitName == "" {
				unitName = a.Config.GetUnitName()
			}
			found, err := a.Devices.DiscoverDevices(cmd.Context(), unitName)
			if err != nil {
				failColor.Fprintln(cmd.OutOrStdout(), "Device discovery failed")
				return err
			}
			printDevices(cmd.OutOrStdout(), found)
			return nil
		},
	}
	cmd.Flags().StringVar(&unitName, "unit", "", "unit marketing name (default: SMARTRENT_UNIT_NAME or the first unit)")
	return cmd
}
