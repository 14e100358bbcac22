package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewAttachmentsCommand creates the attachments command group
func NewAttachmentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "attachments",
		Aliases: []string{"attachment", "files"},
		Short:   "Work with file attachments",
		Long:    "List attachment fields and bulk-download their files",
	}

	cmd.AddCommand(newAttachmentsListCommand())
	cmd.AddCommand(newAttachmentsDownloadCommand())

	return cmd
}

func newAttachmentsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list APP TABLE",
		Short: "List attachment fields",
		Long:  "List the file-typed field labels of a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			labels, err := client.Files().AttachmentFields(context.Background(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to list attachment fields: %w", err)
			}

			rendered, err := renderStructured(labels)
			if err != nil || rendered {
				return err
			}

			if len(labels) == 0 {
				fmt.Println("No attachment fields found")

				return nil
			}

			for _, label := range labels {
				fmt.Println(label)
			}

			return nil
		},
	}
}

func newAttachmentsDownloadCommand() *cobra.Command {
	var (
		where     string
		targetDir string
	)

	cmd := &cobra.Command{
		Use:   "download APP TABLE FIELD",
		Short: "Download attachments",
		Long:  "Download every attachment in a file field for the matching records",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			results, err := client.Files().DownloadAll(context.Background(), args[0], args[1], args[2], targetDir, where)
			if err != nil {
				return fmt.Errorf("download failed: %w", err)
			}

			rendered, err := renderStructured(results)
			if err != nil || rendered {
				return err
			}

			if len(results) == 0 {
				fmt.Println("No attachments found")

				return nil
			}

			var downloaded, skipped, failed int

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Record", "File", "Status")

			for _, result := range results {
				status := "downloaded"

				switch {
				case result.Err != nil:
					status = fmt.Sprintf("failed: %v", result.Err)
					failed++
				case result.Skipped:
					status = "skipped (exists)"
					skipped++
				default:
					downloaded++
				}

				_ = table.Append(fmt.Sprintf("%v", result.RecordID), result.FileName, status)
			}

			_ = table.Render()

			fmt.Printf("%d downloaded, %d skipped, %d failed\n", downloaded, skipped, failed)

			if failed > 0 {
				return fmt.Errorf("%d of %d downloads failed", failed, len(results))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&where, "where", "w", "", "filter expression")
	cmd.Flags().StringVarP(&targetDir, "dir", "d", ".", "directory to save attachments into")

	return cmd
}
