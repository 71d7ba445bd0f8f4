package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mono57/emvqr/internal/fieldnames"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <payload>",
	Short: "List the records of a payload",
	Long: `Inspect lists every record of the payload as the parser reads it, including
repeated tags and records with malformed lengths, followed by the checksum
status. It does not fail on a bad checksum.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, valid := codec.Inspect(args[0])

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "OFFSET\tTAG\tNAME\tLENGTH\tOUTCOME\tVALUE")
		for _, r := range records {
			name, _ := fieldnames.FieldForTag(r.ID)
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", r.Offset, r.ID, name, r.Length, r.Outcome, r.Value)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		status := "valid"
		if !valid {
			status = "invalid"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d records, checksum %s\n", len(records), status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
