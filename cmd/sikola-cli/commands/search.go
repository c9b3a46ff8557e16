package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"sikola-tools/cmd/sikola-cli/globals"
	"sikola-tools/cmd/sikola-cli/utils"
	"sikola-tools/internal/courseindex"
	"sikola-tools/internal/progress"
	"sikola-tools/internal/sikola"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/tcnksm/go-input"
)

func init() {
	searchCmd.Flags().Bool("offline", false, "Only look through courses seen in earlier searches, without logging in.")
	searchCmd.Flags().Bool("skip-malformed", false, "Skip catalogue pages that cannot be parsed instead of stopping.")
	searchCmd.Flags().Bool("no-progress", false, "Do not draw the progress bar.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [course name...] [--offline] [--skip-malformed]",
	Short: "Finds the first course session whose name contains each given query.",
	RunE: func(cmd *cobra.Command, args []string) error {
		offline, err := cmd.Flags().GetBool("offline")
		if err != nil {
			return err
		}
		skipMalformed, err := cmd.Flags().GetBool("skip-malformed")
		if err != nil {
			return err
		}
		noProgress, err := cmd.Flags().GetBool("no-progress")
		if err != nil {
			return err
		}

		v := globals.Get(cmd.Context())
		index, err := openIndex(v)
		if err != nil {
			return err
		}
		defer index.Close()

		if offline {
			queries, err := searchQueries(args, input.DefaultUI())
			if err != nil {
				return err
			}
			return searchOffline(cmd, index, queries)
		}

		session, queries, err := openSession(cmd.Context(), v, args, input.DefaultUI())
		if err != nil {
			return err
		}

		for _, query := range queries {
			opts := sikola.SearchOptions{
				SkipMalformedPages: skipMalformed,
				Recorder:           index,
			}

			var bar *progress.Bar
			lastPage, totalPages := 0, 0
			if !noProgress {
				barOpts := progress.DefaultOptions()
				barOpts.Prefix = "Searching"
				barOpts.Suffix = "of pages"
				barOpts.Autosize = true
				barOpts.Output = os.Stderr
				bar = progress.New(barOpts)
				opts.OnPage = func(page, total int) {
					lastPage, totalPages = page, total
					err := bar.Print(page, total)
					if err != nil {
						slog.Debug("failed to draw progress", "err", err)
					}
				}
			}

			result, err := session.SearchCourses(cmd.Context(), query, opts)
			if bar != nil && lastPage < totalPages {
				fmt.Fprintln(os.Stderr)
			}
			if err != nil {
				return describeError(err)
			}
			for _, skipped := range result.Skipped {
				slog.Warn("skipped unreadable catalogue page", "page", skipped.Page, "err", skipped.Err)
			}
			printResult(result)
		}
		return nil
	},
}

// Asker is the part of *input.UI used to read a course name.
type Asker interface {
	Ask(query string, opts *input.Options) (string, error)
}

func searchQueries(args []string, ui Asker) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	query, err := ui.Ask("Course name", &input.Options{
		Required:  true,
		Loop:      true,
		HideOrder: true,
	})
	if err != nil {
		return nil, err
	}
	return []string{query}, nil
}

// openSession logs in first and only then asks for the course name.
func openSession(ctx context.Context, v *globals.Value, args []string, ui Asker) (*sikola.Session, []string, error) {
	session, err := login(ctx, v)
	if err != nil {
		return nil, nil, err
	}
	queries, err := searchQueries(args, ui)
	if err != nil {
		return nil, nil, err
	}
	return session, queries, nil
}

func printResult(result sikola.SearchResult) {
	if !result.Found() {
		fmt.Printf("No course matching %q in %d pages.\n", result.Query, result.PagesScanned)
		if len(result.Suggestions) > 0 {
			t := utils.NewTable()
			t.SetTitle("Did you mean")
			t.AppendHeader(table.Row{"Course", "Page", "Similarity"})
			for _, s := range result.Suggestions {
				t.AppendRow(table.Row{s.Course.Title, s.Course.Page, fmt.Sprintf("%.2f", s.Score)})
			}
			t.Render()
		}
		return
	}

	t := utils.NewTable()
	t.SetTitle(fmt.Sprintf("Found %q", result.Query))
	t.AppendRows([]table.Row{
		{"Name", result.Course.Title},
		{"Page", fmt.Sprintf("%d of %d", result.Course.Page, result.TotalPages)},
		{"Link", result.Course.Href},
		{"Catalogue", result.Course.PageUrl},
	})
	t.Render()
}

func searchOffline(cmd *cobra.Command, index courseindex.Store, queries []string) error {
	for _, query := range queries {
		entries, err := index.Find(cmd.Context(), query)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Printf("No indexed course matching %q, search online to fill the index.\n", query)
			continue
		}
		renderEntries(fmt.Sprintf("Indexed courses matching %q", query), entries)
	}
	return nil
}
