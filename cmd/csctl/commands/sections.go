package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/central-storage/csclient/pkg/csapi"
)

// NewSectionsCommand creates the sections command group.
func NewSectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sections",
		Aliases: []string{"section", "sec"},
		Short:   "Manage sections",
		Long:    "List, delete and migrate storage sections",
	}

	cmd.AddCommand(newSectionsListCommand())
	cmd.AddCommand(newSectionsDeleteCommand())
	cmd.AddCommand(newSectionsMigrateCommand())

	return cmd
}

func newSectionsListCommand() *cobra.Command {
	var (
		flags     listFlags
		storageID int
		labID     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sections",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			params := flags.params().
				WithFilter("storage_id", storageID).
				WithFilter("laboratory_id", labID)

			sections, pagination, err := fetchList[csapi.Section](ctx, client.Sections(), params, flags.allPages)
			if err != nil {
				return fmt.Errorf("failed to list sections: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), sections, func() error {
				return renderSectionsTable(cmd, sections, pagination, flags.allPages)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&storageID, "storage", 0, "only sections of this storage device")
	cmd.Flags().IntVar(&labID, "lab", 0, "only sections of this laboratory")

	return cmd
}

func renderSectionsTable(cmd *cobra.Command, sections []csapi.Section, pagination csapi.Pagination, allPages bool) error {
	rows := make([][]string, 0, len(sections))
	for _, section := range sections {
		rows = append(rows, []string{
			strconv.Itoa(section.ID),
			section.Code,
			section.Name,
			orNotAvailable(section.Position),
			orNotAvailable(string(section.Status)),
			fmt.Sprintf("%d/%d", section.UsedCapacity, section.Capacity),
			strconv.Itoa(section.StorageID),
		})
	}

	err := renderTable(cmd.OutOrStdout(), "sections", []string{"ID", "Code", "Name", "Position", "Status", "Used", "Storage"}, rows)
	if err != nil {
		return err
	}

	pageHint(cmd.OutOrStdout(), pagination, allPages)

	return nil
}

func newSectionsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete SECTION_ID",
		Short: "Delete a section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0], csapi.ResourceSection, func(client csapi.Client) deleter {
				return client.Sections()
			})
		},
	}
}

func newSectionsMigrateCommand() *cobra.Command {
	var targetStorageID int

	cmd := &cobra.Command{
		Use:   "migrate SECTION_ID...",
		Short: "Move sections to another storage device",
		Long:  "Reassign each section to the target storage. Sections that fail are listed and the rest still move.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if targetStorageID <= 0 {
				return ErrTargetRequired
			}

			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			executor := csapi.NewBatchExecutor(client, csapi.WithBatchLogger(NewLogger()))
			result := executor.MigrateSections(ctx, ids, targetStorageID, csapi.WithProgress(progressPrinter(cmd)))

			return renderBatchFailures(cmd.OutOrStdout(), "migrate sections", result.SuccessCount(), result.Failed)
		},
	}

	cmd.Flags().IntVar(&targetStorageID, "to", 0, "target storage ID")

	return cmd
}
