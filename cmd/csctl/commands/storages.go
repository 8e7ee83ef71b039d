package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/central-storage/csclient/pkg/csapi"
)

// NewStoragesCommand creates the storages command group.
func NewStoragesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "storages",
		Aliases: []string{"storage", "st"},
		Short:   "Manage storage devices",
		Long:    "List, inspect and delete storage devices",
	}

	cmd.AddCommand(newStoragesListCommand())
	cmd.AddCommand(newStoragesGetCommand())
	cmd.AddCommand(newStoragesDeleteCommand())

	return cmd
}

func newStoragesListCommand() *cobra.Command {
	var (
		flags  listFlags
		labID  int
		status string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List storage devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			params := flags.params().
				WithFilter("lab_id", labID).
				WithFilter("status", status)

			storages, pagination, err := fetchList[csapi.Storage](ctx, client.Storages(), params, flags.allPages)
			if err != nil {
				return fmt.Errorf("failed to list storages: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), storages, func() error {
				return renderStoragesTable(cmd, storages, pagination, flags.allPages)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&labID, "lab", 0, "only storages of this laboratory")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")

	return cmd
}

func renderStoragesTable(cmd *cobra.Command, storages []csapi.Storage, pagination csapi.Pagination, allPages bool) error {
	rows := make([][]string, 0, len(storages))
	for _, storage := range storages {
		rows = append(rows, []string{
			strconv.Itoa(storage.ID),
			storage.Code,
			storage.Name,
			orNotAvailable(storage.Type),
			orNotAvailable(string(storage.Status)),
			strconv.Itoa(storage.Capacity),
			strconv.Itoa(storage.LabID),
		})
	}

	err := renderTable(cmd.OutOrStdout(), "storages", []string{"ID", "Code", "Name", "Type", "Status", "Capacity", "Lab"}, rows)
	if err != nil {
		return err
	}

	pageHint(cmd.OutOrStdout(), pagination, allPages)

	return nil
}

func newStoragesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get STORAGE_ID",
		Short: "Get storage details",
		Long:  "Display a storage device together with its sections",
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

			storage, err := client.Storages().Get(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get storage: %w", err)
			}

			sections, err := client.Storages().ListSections(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to list sections of storage %d: %w", id, err)
			}

			storage.Sections = sections

			return renderOutput(cmd.OutOrStdout(), storage, func() error {
				err := renderProperties(cmd.OutOrStdout(), [][]string{
					{"ID", strconv.Itoa(storage.ID)},
					{"Code", storage.Code},
					{"Name", storage.Name},
					{"Type", orNotAvailable(storage.Type)},
					{"Status", orNotAvailable(string(storage.Status))},
					{"Capacity", strconv.Itoa(storage.Capacity)},
					{"Lab", strconv.Itoa(storage.LabID)},
				})
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nSections:")

				return renderSectionsTable(cmd, sections, csapi.Pagination{}, true)
			})
		},
	}
}

func newStoragesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete STORAGE_ID",
		Short: "Delete a storage device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0], csapi.ResourceStorage, func(client csapi.Client) deleter {
				return client.Storages()
			})
		},
	}
}
