package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command group
func NewTablesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tables",
		Aliases: []string{"table"},
		Short:   "Inspect tables",
		Long:    "List and describe tables within a Quickbase application",
	}

	cmd.AddCommand(newTablesListCommand())
	cmd.AddCommand(newTablesDescribeCommand())

	return cmd
}

func newTablesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list APP",
		Short: "List tables",
		Long:  "List all tables in an application by friendly name or ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			tables, err := client.Tables().List(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list tables: %w", err)
			}

			rendered, err := renderStructured(tables)
			if err != nil || rendered {
				return err
			}

			if len(tables) == 0 {
				fmt.Println("No tables found")

				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Name", "ID", "Records", "Description")

			for _, t := range tables {
				records := ""
				if t.NextRecordID > 0 {
					records = strconv.Itoa(t.NextRecordID - 1)
				}

				_ = table.Append(t.Name, t.ID, records, t.Description)
			}

			_ = table.Render()

			return nil
		},
	}
}

func newTablesDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe APP TABLE",
		Short: "Describe a table",
		Long:  "Show the cached schema of a table, including its field map",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			info, err := client.Metadata().Table(context.Background(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to describe table: %w", err)
			}

			fields, err := client.Metadata().FieldMap(context.Background(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to load fields: %w", err)
			}

			rendered, err := renderStructured(map[string]interface{}{
				"id":     info.ID,
				"name":   info.Name,
				"size":   info.Size,
				"fields": fields,
			})
			if err != nil || rendered {
				return err
			}

			fmt.Printf("Name:    %s\n", info.Name)
			fmt.Printf("ID:      %s\n", info.ID)
			fmt.Printf("Records: %d\n", info.Size)
			fmt.Println()

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Label", "Field ID", "Type")

			for label, field := range fields {
				_ = table.Append(label, strconv.Itoa(field.ID), field.Type)
			}

			_ = table.Render()

			return nil
		},
	}
}
