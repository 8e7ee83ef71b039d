package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/central-storage/csclient/pkg/csapi"
)

// NewLabsCommand creates the laboratories command group.
func NewLabsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "labs",
		Aliases: []string{"lab", "laboratories"},
		Short:   "Manage laboratories",
		Long:    "List, inspect, create and delete laboratories",
	}

	cmd.AddCommand(newLabsListCommand())
	cmd.AddCommand(newLabsGetCommand())
	cmd.AddCommand(newLabsCreateCommand())
	cmd.AddCommand(newLabsImportCommand())
	cmd.AddCommand(newLabsDeleteCommand())

	return cmd
}

func newLabsListCommand() *cobra.Command {
	var (
		flags         listFlags
		securityLevel int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List laboratories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabsListCommand(cmd, &flags, securityLevel)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&securityLevel, "security-level", 0, "filter by security level")

	return cmd
}

func runLabsListCommand(cmd *cobra.Command, flags *listFlags, securityLevel int) error {
	ctx := cmd.Context()

	client, err := newAuthenticatedClient(ctx)
	if err != nil {
		return err
	}

	params := flags.params().WithFilter("security_level", securityLevel)

	labs, pagination, err := fetchList[csapi.Laboratory](ctx, client.Laboratories(), params, flags.allPages)
	if err != nil {
		return fmt.Errorf("failed to list laboratories: %w", err)
	}

	return renderOutput(cmd.OutOrStdout(), labs, func() error {
		return renderLabsTable(cmd, labs, pagination, flags.allPages)
	})
}

func renderLabsTable(cmd *cobra.Command, labs []csapi.Laboratory, pagination csapi.Pagination, allPages bool) error {
	rows := make([][]string, 0, len(labs))
	for _, lab := range labs {
		rows = append(rows, []string{
			strconv.Itoa(lab.ID),
			lab.Code,
			lab.Name,
			orNotAvailable(lab.Location),
			strconv.Itoa(lab.SecurityLevel),
			formatDate(lab.CreatedAt),
		})
	}

	err := renderTable(cmd.OutOrStdout(), "laboratories", []string{"ID", "Code", "Name", "Location", "Security", "Created"}, rows)
	if err != nil {
		return err
	}

	pageHint(cmd.OutOrStdout(), pagination, allPages)

	return nil
}

func newLabsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get LAB_ID",
		Short: "Get laboratory details",
		Long:  "Display a laboratory together with its storages",
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

			lab, err := client.Laboratories().Get(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get laboratory: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), lab, func() error {
				err := renderProperties(cmd.OutOrStdout(), [][]string{
					{"ID", strconv.Itoa(lab.ID)},
					{"Code", lab.Code},
					{"Name", lab.Name},
					{"Location", orNotAvailable(lab.Location)},
					{"Description", orNotAvailable(lab.Description)},
					{"Security Level", strconv.Itoa(lab.SecurityLevel)},
					{"Created", formatDate(lab.CreatedAt)},
				})
				if err != nil {
					return err
				}

				if len(lab.Storages) == 0 {
					return nil
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nStorages:")

				return renderStoragesTable(cmd, lab.Storages, csapi.Pagination{}, true)
			})
		},
	}
}

func newLabsCreateCommand() *cobra.Command {
	var request csapi.LaboratoryCreateRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a laboratory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			lab, err := client.Laboratories().Create(ctx, &request)
			if err != nil {
				return fmt.Errorf("failed to create laboratory: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), lab, func() error {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created laboratory %s (id %d)\n", lab.Code, lab.ID)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&request.Code, "code", "", "laboratory code")
	cmd.Flags().StringVar(&request.Name, "name", "", "laboratory name")
	cmd.Flags().StringVar(&request.Location, "location", "", "location")
	cmd.Flags().StringVar(&request.Description, "description", "", "description")
	cmd.Flags().IntVar(&request.SecurityLevel, "security-level", 0, "security level")

	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newLabsImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create laboratories from a YAML file",
		Long:  "Create every laboratory listed in a YAML file. Failures are reported per entry and do not stop the import.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requests, err := readLabRequests(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			executor := csapi.NewBatchExecutor(client, csapi.WithBatchLogger(NewLogger()))
			result := executor.CreateLaboratories(ctx, requests, csapi.WithProgress(progressPrinter(cmd)))

			return renderBatchFailures(cmd.OutOrStdout(), "create laboratories", result.SuccessCount(), result.Failed)
		},
	}
}

func readLabRequests(path string) ([]*csapi.LaboratoryCreateRequest, error) {
	// #nosec G304 -- the path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var requests []*csapi.LaboratoryCreateRequest

	err = yaml.Unmarshal(data, &requests)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return requests, nil
}

func newLabsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete LAB_ID",
		Short: "Delete a laboratory",
		Long:  "Delete a laboratory. The server refuses while it still has storages.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0], csapi.ResourceLaboratory, func(client csapi.Client) deleter {
				return client.Laboratories()
			})
		},
	}
}

type deleter interface {
	Delete(ctx context.Context, id int) error
}

// runDelete deletes one resource by ID argument.
func runDelete(cmd *cobra.Command, arg string, resource csapi.ResourceType, pick func(csapi.Client) deleter) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	client, err := newAuthenticatedClient(ctx)
	if err != nil {
		return err
	}

	err = pick(client).Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", resource, id, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d\n", resource, id)

	return nil
}
