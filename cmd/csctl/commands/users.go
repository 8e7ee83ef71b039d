package commands

import (
	"fmt"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/central-storage/csclient/pkg/csapi"
)

// NewUsersCommand creates the users command group. Every subcommand needs an admin token.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage user accounts",
	}

	cmd.AddCommand(newUsersListCommand())
	cmd.AddCommand(newUsersRegisterCommand())
	cmd.AddCommand(newUsersDeactivateCommand())
	cmd.AddCommand(newUsersDeleteCommand())

	return cmd
}

func newUsersListCommand() *cobra.Command {
	var (
		flags listFlags
		role  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			params := flags.params().WithFilter("role", role)

			users, pagination, err := fetchList[csapi.User](ctx, client.Users(), params, flags.allPages)
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), users, func() error {
				rows := make([][]string, 0, len(users))
				for _, user := range users {
					rows = append(rows, []string{
						strconv.Itoa(user.ID),
						user.Username,
						orNotAvailable(user.Email),
						string(user.Role),
						formatBool(user.Active),
						orNotAvailable(user.Department),
					})
				}

				err := renderTable(cmd.OutOrStdout(), "users", []string{"ID", "Username", "Email", "Role", "Active", "Department"}, rows)
				if err != nil {
					return err
				}

				pageHint(cmd.OutOrStdout(), pagination, flags.allPages)

				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&role, "role", "", "filter by role (admin, user)")

	return cmd
}

func newUsersRegisterCommand() *cobra.Command {
	var (
		request csapi.UserCreateRequest
		role    string
	)

	cmd := &cobra.Command{
		Use:   "register USERNAME",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request.Username = args[0]
			request.Role = csapi.Role(role)

			if request.Password == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Password for new user: ")

				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}

				request.Password = string(bytePassword)

				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}

			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			user, err := client.Users().Register(ctx, &request)
			if err != nil {
				return fmt.Errorf("failed to register user: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), user, func() error {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (id %d, %s)\n", user.Username, user.ID, user.Role)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&request.Email, "email", "", "email address")
	cmd.Flags().StringVar(&request.Password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&role, "role", string(csapi.RoleUser), "role (admin, user)")
	cmd.Flags().StringVar(&request.RealName, "real-name", "", "real name")
	cmd.Flags().StringVar(&request.Department, "department", "", "department")

	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newUsersDeactivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate USER_ID",
		Short: "Disable a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			active := false

			user, err := client.Users().Update(ctx, id, &csapi.UserUpdateRequest{Active: &active})
			if err != nil {
				return fmt.Errorf("failed to deactivate user: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deactivated %s\n", user.Username)

			return nil
		},
	}
}

func newUsersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete USER_ID",
		Short: "Delete a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0], csapi.ResourceUser, func(client csapi.Client) deleter {
				return client.Users()
			})
		},
	}
}
