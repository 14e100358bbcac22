package commands

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewQueryCommand creates the query command
func NewQueryCommand() *cobra.Command {
	var (
		selectFields []string
		where        string
		skip         int
		top          int
	)

	cmd := &cobra.Command{
		Use:   "query APP TABLE",
		Short: "Query records",
		Long:  "Run a single-page record query using friendly field labels",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			var opts *qbapi.QueryOptions
			if skip > 0 || top > 0 {
				opts = &qbapi.QueryOptions{Skip: skip, Top: top}
			}

			records, err := client.Records().Query(context.Background(), args[0], args[1], selectFields, where, opts)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}

			rendered, err := renderStructured(records)
			if err != nil || rendered {
				return err
			}

			if len(records) == 0 {
				fmt.Println("No records found")

				return nil
			}

			printRecords(records, selectFields)

			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&selectFields, "select", "s", nil, "field labels to select (default all)")
	cmd.Flags().StringVarP(&where, "where", "w", "", "filter expression")
	cmd.Flags().IntVar(&skip, "skip", 0, "records to skip")
	cmd.Flags().IntVar(&top, "top", 0, "maximum records to return")

	return cmd
}

// printRecords renders label-keyed records as a table. Column order follows
// the select list when given, otherwise the sorted labels of the first row.
func printRecords(records []qbapi.Record, selectFields []string) {
	columns := selectFields
	if len(columns) == 0 {
		for label := range records[0] {
			columns = append(columns, label)
		}

		sort.Strings(columns)
	}

	table := tablewriter.NewWriter(os.Stdout)

	header := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		header = append(header, col)
	}

	table.Header(header...)

	for _, record := range records {
		row := make([]interface{}, 0, len(columns))

		for _, col := range columns {
			value := record[col]
			if value == nil {
				row = append(row, "")
			} else {
				row = append(row, fmt.Sprintf("%v", value))
			}
		}

		_ = table.Append(row...)
	}

	_ = table.Render()
}
