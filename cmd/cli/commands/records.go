package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/productbird/connector/internal/db/models"
)

// GetRecordsCmd returns the records command group
func GetRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and manage generation records",
	}

	cmd.AddCommand(getRecordsListCmd())
	cmd.AddCommand(getRecordsClearCmd())

	return cmd
}

func getRecordsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records still holding a live job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, records, err := buildEngine()
			if err != nil {
				return err
			}

			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			recs, err := records.ListLiveJobs(cmd.Context(), &models.ListOptions{Limit: limit, Offset: offset})
			if err != nil {
				return fmt.Errorf("failed to list live jobs: %w", err)
			}

			if len(recs) == 0 {
				fmt.Println("No live jobs")
				return nil
			}

			for _, rec := range recs {
				fmt.Printf("item=%d status=%s job=%s updated=%s\n",
					rec.ItemID, rec.Status, rec.ExternalJobID, rec.LastUpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", models.DefaultLimit, "Maximum number of records to list")
	cmd.Flags().Int("offset", 0, "Offset into the live-job listing")

	return cmd
}

func getRecordsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <item-id>",
		Short: "Remove all generation state for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil || itemID == 0 {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			engine, _, err := buildEngine()
			if err != nil {
				return err
			}

			if err := engine.Reset(cmd.Context(), uint(itemID)); err != nil {
				return fmt.Errorf("failed to clear record: %w", err)
			}

			fmt.Printf("Cleared generation state for item %d\n", itemID)
			return nil
		},
	}
}
