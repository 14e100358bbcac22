package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewFieldsCommand creates the fields command group
func NewFieldsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fields",
		Aliases: []string{"field"},
		Short:   "Inspect fields",
		Long:    "List field definitions within a Quickbase table",
	}

	cmd.AddCommand(newFieldsListCommand())

	return cmd
}

func newFieldsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list APP TABLE",
		Short: "List fields",
		Long:  "List all fields in a table by friendly name or ID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			fields, err := client.Fields().List(context.Background(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to list fields: %w", err)
			}

			rendered, err := renderStructured(fields)
			if err != nil || rendered {
				return err
			}

			if len(fields) == 0 {
				fmt.Println("No fields found")

				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("ID", "Label", "Type", "Required", "Unique")

			for _, field := range fields {
				_ = table.Append(strconv.Itoa(field.ID), field.Label, field.FieldType,
					strconv.FormatBool(field.Required), strconv.FormatBool(field.Unique))
			}

			_ = table.Render()

			return nil
		},
	}
}
