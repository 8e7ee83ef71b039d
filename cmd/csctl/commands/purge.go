package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/central-storage/csclient/internal/constants"
	"github.com/central-storage/csclient/pkg/csapi"
)

// NewPurgeCommand creates the purge command.
func NewPurgeCommand() *cobra.Command {
	var (
		confirmed   bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every item, section, storage and laboratory",
		Long: `Delete the whole inventory hierarchy, children before parents.

Movements and users are kept. Individual delete failures are listed at the end;
a listing failure stops the purge before the next resource type.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return constants.ErrPurgeNotConfirmed
			}

			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			purger := csapi.NewPurger(client,
				csapi.WithPurgeLogger(NewLogger()),
				csapi.WithPurgeConcurrency(concurrency),
			)

			report, purgeErr := purger.PurgeAll(ctx, confirmed)

			err = renderOutput(cmd.OutOrStdout(), report, func() error {
				return renderPurgeReport(cmd, report)
			})
			if err != nil {
				return err
			}

			if purgeErr != nil {
				return fmt.Errorf("%w: %w", ErrPurgeIncomplete, purgeErr)
			}

			if failures := report.Failures(); len(failures) > 0 {
				return fmt.Errorf("%w: %d deletes failed", ErrBatchFailures, len(failures))
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "confirm the purge")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "parallel deletes within one resource type")

	return cmd
}

func renderPurgeReport(cmd *cobra.Command, report *csapi.PurgeReport) error {
	rows := make([][]string, 0, len(report.Phases))
	for _, phase := range report.Phases {
		status := "ok"
		if phase.Err != nil {
			status = phase.Err.Error()
		}

		rows = append(rows, []string{
			Title(string(phase.Resource)),
			strconv.Itoa(phase.Found),
			strconv.Itoa(phase.Deleted),
			strconv.Itoa(len(phase.Failed)),
			status,
		})
	}

	err := renderTable(cmd.OutOrStdout(), "phases", []string{"Resource", "Found", "Deleted", "Failed", "Status"}, rows)
	if err != nil {
		return err
	}

	failures := report.Failures()
	if len(failures) == 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d resources\n", report.DeletedCount())

		return nil
	}

	failureRows := make([][]string, 0, len(failures))
	for _, failure := range failures {
		failureRows = append(failureRows, []string{
			Title(string(failure.Resource)),
			strconv.Itoa(failure.ID),
			failure.Err.Error(),
		})
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nDeleted %d resources, %d failed:\n", report.DeletedCount(), len(failures))

	return renderTable(cmd.OutOrStdout(), "failures", []string{"Resource", "ID", "Error"}, failureRows)
}
