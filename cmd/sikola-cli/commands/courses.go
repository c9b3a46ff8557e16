package commands

import (
	"fmt"
	"time"

	"sikola-tools/cmd/sikola-cli/globals"
	"sikola-tools/cmd/sikola-cli/utils"
	"sikola-tools/internal/courseindex"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(coursesCmd)
}

var coursesCmd = &cobra.Command{
	Use:   "courses [filter]",
	Short: "Lists the courses seen in earlier searches.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := openIndex(globals.Get(cmd.Context()))
		if err != nil {
			return err
		}
		defer index.Close()

		var entries []courseindex.Entry
		if len(args) == 1 {
			entries, err = index.Find(cmd.Context(), args[0])
		} else {
			entries, err = index.All(cmd.Context())
		}
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("The course index is empty, run search first.")
			return nil
		}
		renderEntries(fmt.Sprintf("%d indexed courses", len(entries)), entries)
		return nil
	},
}

func renderEntries(title string, entries []courseindex.Entry) {
	t := utils.NewTable()
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Course", "Page", "Link", "Last seen"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.Title, e.Page, e.Href, e.SeenAt.Format(time.DateTime)})
	}
	t.Render()
}
