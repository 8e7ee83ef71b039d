package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/central-storage/csclient/internal/constants"
	"github.com/central-storage/csclient/pkg/csapi"
)

// movementFilters are the filters accepted by the movement list and export endpoints.
type movementFilters struct {
	itemID       int
	userID       int
	movementType string
	startDate    string
	endDate      string
}

func (f *movementFilters) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.itemID, "item", 0, "only movements of this item")
	cmd.Flags().IntVar(&f.userID, "user", 0, "only movements by this user")
	cmd.Flags().StringVar(&f.movementType, "type", "", "movement type (入库, 出库, 转移, 盘点, 损坏, 报废)")
	cmd.Flags().StringVar(&f.startDate, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.endDate, "to", "", "end date (YYYY-MM-DD)")
}

func (f *movementFilters) apply(params *csapi.QueryParams) (*csapi.QueryParams, error) {
	params.
		WithFilter("item_id", f.itemID).
		WithFilter("user_id", f.userID).
		WithFilter("movement_type", f.movementType)

	for key, value := range map[string]string{"start_date": f.startDate, "end_date": f.endDate} {
		if value == "" {
			continue
		}

		date, err := csapi.ParseDate(value)
		if err != nil {
			return nil, err
		}

		params.WithFilter(key, date)
	}

	return params, nil
}

// NewMovementsCommand creates the movements command group.
func NewMovementsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "movements",
		Aliases: []string{"movement", "mv"},
		Short:   "Manage stock movements",
		Long:    "List, record and export stock movements",
	}

	cmd.AddCommand(newMovementsListCommand())
	cmd.AddCommand(newMovementsRecordCommand())
	cmd.AddCommand(newMovementsExportCommand())

	return cmd
}

func newMovementsListCommand() *cobra.Command {
	var (
		flags   listFlags
		filters movementFilters
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stock movements",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := filters.apply(flags.params())
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			movements, pagination, err := fetchList[csapi.Movement](ctx, client.Movements(), params, flags.allPages)
			if err != nil {
				return fmt.Errorf("failed to list movements: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), movements, func() error {
				return renderMovementsTable(cmd, movements, pagination, flags.allPages)
			})
		},
	}

	flags.register(cmd)
	filters.register(cmd)

	return cmd
}

func renderMovementsTable(cmd *cobra.Command, movements []csapi.Movement, pagination csapi.Pagination, allPages bool) error {
	rows := make([][]string, 0, len(movements))
	for _, movement := range movements {
		rows = append(rows, []string{
			strconv.Itoa(movement.ID),
			movement.CreatedAt.Format(constants.DateTimeFormat),
			string(movement.MovementType),
			strconv.Itoa(movement.ItemID),
			strconv.Itoa(movement.Quantity),
			orNotAvailable(movement.Reason),
			strconv.Itoa(movement.UserID),
		})
	}

	err := renderTable(cmd.OutOrStdout(), "movements", []string{"ID", "Time", "Type", "Item", "Quantity", "Reason", "User"}, rows)
	if err != nil {
		return err
	}

	pageHint(cmd.OutOrStdout(), pagination, allPages)

	return nil
}

func newMovementsRecordCommand() *cobra.Command {
	var (
		request      csapi.MovementCreateRequest
		movementType string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a stock movement",
		Long:  "Record a movement. The server adjusts the item quantity accordingly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			request.MovementType = csapi.MovementType(movementType)

			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			movement, err := client.Movements().Create(ctx, &request)
			if err != nil {
				return fmt.Errorf("failed to record movement: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), movement, func() error {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s of %d for item %d (id %d)\n",
					movement.MovementType, movement.Quantity, movement.ItemID, movement.ID)

				return nil
			})
		},
	}

	cmd.Flags().IntVar(&request.ItemID, "item", 0, "item ID")
	cmd.Flags().StringVar(&movementType, "type", string(csapi.MovementIn), "movement type")
	cmd.Flags().IntVar(&request.Quantity, "quantity", 0, "quantity moved")
	cmd.Flags().StringVar(&request.Reason, "reason", "", "reason")
	cmd.Flags().StringVar(&request.FromLocation, "from", "", "source location")
	cmd.Flags().StringVar(&request.ToLocation, "to", "", "destination location")
	cmd.Flags().StringVar(&request.Notes, "notes", "", "notes")

	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("quantity")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}

func newMovementsExportCommand() *cobra.Command {
	var (
		filters    movementFilters
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export movements as CSV",
		Long:  "Download the movement log as CSV to a file or stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := filters.apply(csapi.NewQueryParams())
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			data, err := client.Movements().Export(ctx, params)
			if err != nil {
				return fmt.Errorf("failed to export movements: %w", err)
			}

			if outputFile == "" || outputFile == "-" {
				_, err = cmd.OutOrStdout().Write(data)

				return err
			}

			err = os.WriteFile(outputFile, data, constants.ConfigFilePerm)
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", outputFile, err)
			}

			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", len(data), outputFile)

			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&outputFile, "file", "f", "", "output file (default stdout)")

	return cmd
}
