package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/central-storage/csclient/internal/auth"
	"github.com/central-storage/csclient/internal/constants"
	"github.com/central-storage/csclient/pkg/csapi"
	"github.com/central-storage/csclient/pkg/csclient"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a Central Storage server",
		Long:  "Authenticate with username and password and store the issued token in the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())

			config := loadConfig()
			if config.API == "" {
				config.API = prompt(cmd.OutOrStdout(), reader, "API endpoint: ")
			}

			if config.API == "" {
				return constants.ErrNoAPIEndpoint
			}

			if username == "" {
				username = config.Username
			}

			if username == "" {
				username = prompt(cmd.OutOrStdout(), reader, "Username: ")
			}

			if username == "" {
				return ErrUsernameRequired
			}

			if password == "" {
				password = viper.GetString("password")
			}

			if password == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Password: ")

				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}

				password = string(bytePassword)

				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}

			return runLogin(cmd, config, username, password)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted, or CSCTL_PASSWORD)")

	return cmd
}

func runLogin(cmd *cobra.Command, config *Config, username, password string) error {
	ctx := cmd.Context()

	client, err := csclient.New(ctx, &csapi.Config{
		APIEndpoint: config.API,
		HTTPTimeout: constants.DefaultHTTPTimeout,
		Logger:      NewLogger(),
		Debug:       viper.GetBool("verbose"),
		UserAgent:   UserAgent,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	resp, err := client.Auth().Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	config.Username = username
	config.Token = resp.Token
	config.TokenExpiresAt = nil

	if token := auth.ParseToken(resp.Token); !token.ExpiresAt.IsZero() {
		config.TokenExpiresAt = &token.ExpiresAt
	}

	err = saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s (%s)\n", config.API, resp.User.Username, resp.User.Role)

	return nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		Long:  "Remove the stored token from the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.Token = ""
			config.TokenExpiresAt = nil

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged out")

			return nil
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAuthenticatedClient(cmd.Context())
			if err != nil {
				return err
			}

			user, err := client.Auth().Profile(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get profile: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), user, func() error {
				return renderProperties(cmd.OutOrStdout(), [][]string{
					{"ID", fmt.Sprint(user.ID)},
					{"Username", user.Username},
					{"Email", orNotAvailable(user.Email)},
					{"Role", string(user.Role)},
					{"Real Name", orNotAvailable(user.RealName)},
					{"Department", orNotAvailable(user.Department)},
					{"Active", formatBool(user.Active)},
				})
			})
		},
	}
}

func prompt(w io.Writer, reader *bufio.Reader, label string) string {
	_, _ = fmt.Fprint(w, label)

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}

	return strings.TrimSpace(line)
}
