package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/central-storage/csclient/pkg/csapi"
)

const defaultExpiringDays = 30

// NewItemsCommand creates the items command group.
func NewItemsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Manage inventory items",
		Long:    "List and inspect items and adjust stock levels",
	}

	cmd.AddCommand(newItemsListCommand())
	cmd.AddCommand(newItemsGetCommand())
	cmd.AddCommand(newItemsSetQuantityCommand())
	cmd.AddCommand(newItemsBulkQuantityCommand())
	cmd.AddCommand(newItemsLowStockCommand())
	cmd.AddCommand(newItemsExpiringCommand())
	cmd.AddCommand(newItemsCategoriesCommand())
	cmd.AddCommand(newItemsDeleteCommand())

	return cmd
}

func newItemsListCommand() *cobra.Command {
	var (
		flags     listFlags
		sectionID int
		category  string
		lowStock  bool
		expiring  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items with their locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			params := flags.params().
				WithFilter("section_id", sectionID).
				WithFilter("category", category).
				WithFilter("low_stock", lowStock).
				WithFilter("expiring", expiring)

			lister := csapi.ListerFunc[csapi.ItemRecord](client.Items().ListRecords)

			records, pagination, err := fetchList[csapi.ItemRecord](ctx, lister, params, flags.allPages)
			if err != nil {
				return fmt.Errorf("failed to list items: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), records, func() error {
				return renderItemRecordsTable(cmd, records, pagination, flags.allPages)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&sectionID, "section", 0, "only items of this section")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().BoolVar(&lowStock, "low-stock", false, "only items at or below their minimum quantity")
	cmd.Flags().BoolVar(&expiring, "expiring", false, "only items expiring soon")

	return cmd
}

func renderItemRecordsTable(cmd *cobra.Command, records []csapi.ItemRecord, pagination csapi.Pagination, allPages bool) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		item := record.Item
		rows = append(rows, []string{
			strconv.Itoa(item.ID),
			item.Code,
			item.Name,
			orNotAvailable(item.Category),
			quantityCell(&item),
			formatOptionalDate(item.ExpiryDate),
			orNotAvailable(record.Location.FullPath),
		})
	}

	err := renderTable(cmd.OutOrStdout(), "items", []string{"ID", "Code", "Name", "Category", "Quantity", "Expires", "Location"}, rows)
	if err != nil {
		return err
	}

	pageHint(cmd.OutOrStdout(), pagination, allPages)

	return nil
}

func renderItemsTable(cmd *cobra.Command, items []csapi.Item) error {
	rows := make([][]string, 0, len(items))
	for i := range items {
		item := &items[i]
		rows = append(rows, []string{
			strconv.Itoa(item.ID),
			item.Code,
			item.Name,
			quantityCell(item),
			formatOptionalDate(item.ExpiryDate),
			strconv.Itoa(item.SectionID),
		})
	}

	return renderTable(cmd.OutOrStdout(), "items", []string{"ID", "Code", "Name", "Quantity", "Expires", "Section"}, rows)
}

func quantityCell(item *csapi.Item) string {
	cell := strconv.Itoa(item.Quantity)
	if item.Unit != "" {
		cell += " " + item.Unit
	}

	if item.LowStock() {
		cell += " (low)"
	}

	return cell
}

func newItemsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ITEM_ID",
		Short: "Get item details",
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

			record, err := client.Items().GetRecord(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get item: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), record, func() error {
				item := record.Item

				return renderProperties(cmd.OutOrStdout(), [][]string{
					{"ID", strconv.Itoa(item.ID)},
					{"Code", item.Code},
					{"Name", item.Name},
					{"Category", orNotAvailable(item.Category)},
					{"Quantity", quantityCell(&item)},
					{"Minimum", strconv.Itoa(item.MinQuantity)},
					{"Price", item.Price.StringFixed(2)},
					{"Supplier", orNotAvailable(item.Supplier)},
					{"Purchased", formatOptionalDate(item.PurchaseDate)},
					{"Expires", formatOptionalDate(item.ExpiryDate)},
					{"Location", orNotAvailable(record.Location.FullPath)},
				})
			})
		},
	}
}

func newItemsSetQuantityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-quantity ITEM_ID QUANTITY",
		Short: "Set the stock level of one item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := parseQuantityUpdates([]string{args[0] + "=" + args[1]})
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			change, err := client.Items().UpdateQuantity(ctx, updates[0].ItemID, updates[0].Quantity)
			if err != nil {
				return fmt.Errorf("failed to update quantity: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), change, func() error {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Item %d: %d -> %d\n", updates[0].ItemID, change.OldQuantity, change.NewQuantity)

				return nil
			})
		},
	}
}

func newItemsBulkQuantityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bulk-quantity ITEM_ID=QUANTITY...",
		Short: "Set the stock level of many items",
		Long:  "Update every listed item. Items that fail are reported and the remaining updates still run.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := parseQuantityUpdates(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			executor := csapi.NewBatchExecutor(client, csapi.WithBatchLogger(NewLogger()))
			result := executor.BulkUpdateQuantities(ctx, updates, csapi.WithProgress(progressPrinter(cmd)))

			return renderBatchFailures(cmd.OutOrStdout(), "update quantities", result.SuccessCount(), result.Failed)
		},
	}
}

func newItemsLowStockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "low-stock",
		Short: "List items at or below their minimum quantity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			items, err := client.Items().LowStock(ctx)
			if err != nil {
				return fmt.Errorf("failed to list low-stock items: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), items, func() error {
				return renderItemsTable(cmd, items)
			})
		},
	}
}

func newItemsExpiringCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "List items expiring soon",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			items, err := client.Items().Expiring(ctx, days)
			if err != nil {
				return fmt.Errorf("failed to list expiring items: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), items, func() error {
				return renderItemsTable(cmd, items)
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", defaultExpiringDays, "expiry window in days")

	return cmd
}

func newItemsCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List item categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			categories, err := client.Items().Categories(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), categories, func() error {
				if len(categories) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No categories found")

					return nil
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(categories, "\n"))

				return nil
			})
		},
	}
}

func newItemsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ITEM_ID",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0], csapi.ResourceItem, func(client csapi.Client) deleter {
				return client.Items()
			})
		},
	}
}
