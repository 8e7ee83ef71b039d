package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/central-storage/csclient/pkg/csapi"
)

// NewInventoryCommand creates the inventory summary command.
func NewInventoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "Count resources at every hierarchy level",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			summary, err := csapi.NewBatchExecutor(client).Inventory(ctx)
			if err != nil {
				return fmt.Errorf("failed to read inventory: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), summary, func() error {
				return renderProperties(cmd.OutOrStdout(), [][]string{
					{Title(string(csapi.ResourceLaboratory)), strconv.Itoa(summary.Laboratories)},
					{Title(string(csapi.ResourceStorage)), strconv.Itoa(summary.Storages)},
					{Title(string(csapi.ResourceSection)), strconv.Itoa(summary.Sections)},
					{Title(string(csapi.ResourceItem)), strconv.Itoa(summary.Items)},
				})
			})
		},
	}
}

// NewStatsCommand creates the stats command group.
func NewStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show server statistics",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dashboard",
		Short: "Show global dashboard counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			stats, err := client.Stats().Dashboard(ctx)
			if err != nil {
				return fmt.Errorf("failed to get dashboard stats: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), stats, func() error {
				return renderProperties(cmd.OutOrStdout(), [][]string{
					{"Laboratories", strconv.Itoa(stats.Laboratories)},
					{"Storages", strconv.Itoa(stats.Storages)},
					{"Sections", strconv.Itoa(stats.Sections)},
					{"Items", strconv.Itoa(stats.Items)},
					{"Low Stock", strconv.Itoa(stats.LowStockItems)},
					{"Expiring", strconv.Itoa(stats.ExpiringItems)},
					{"Expired", strconv.Itoa(stats.ExpiredItems)},
					{"Users", strconv.Itoa(stats.Users)},
					{"Recent Movements", strconv.Itoa(stats.RecentMovements)},
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "me",
		Short: "Show your own activity counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newAuthenticatedClient(ctx)
			if err != nil {
				return err
			}

			stats, err := client.Stats().User(ctx)
			if err != nil {
				return fmt.Errorf("failed to get user stats: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), stats, func() error {
				return renderProperties(cmd.OutOrStdout(), [][]string{
					{"Movements", strconv.Itoa(stats.TotalMovements)},
					{"Recent Activity", strconv.Itoa(stats.RecentActivity)},
					{"Items Created", strconv.Itoa(stats.ItemsCreated)},
					{"Laboratories", strconv.Itoa(stats.LabsCount)},
					{"Devices", strconv.Itoa(stats.DevicesCount)},
				})
			})
		},
	})

	return cmd
}

// NewHealthCommand creates the health command. It needs no credentials.
func NewHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newClient(ctx)
			if err != nil {
				return err
			}

			health, err := client.Stats().Health(ctx)
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), health, func() error {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), health.Status)

				return nil
			})
		},
	}
}
