package commands

import (
	"time"

	"sikola-tools/internal/progress"

	"github.com/spf13/cobra"
)

func init() {
	progressCmd.Flags().Int("total", 57, "Number of steps.")
	progressCmd.Flags().Duration("delay", time.Millisecond*100, "Time between steps.")
	progressCmd.Flags().Bool("autosize", false, "Stretch the bar to the terminal width.")
	progressCmd.Flags().Int("length", 50, "Bar length when not autosized.")
	progressCmd.Flags().String("fill", "█", "Glyph drawn for the completed part of the bar.")
	rootCmd.AddCommand(progressCmd)
}

var progressCmd = &cobra.Command{
	Use:   "progress [--total <n>] [--delay <duration>] [--autosize]",
	Short: "Draws a progress bar over a dummy workload.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		total, err := cmd.Flags().GetInt("total")
		if err != nil {
			return err
		}
		delay, err := cmd.Flags().GetDuration("delay")
		if err != nil {
			return err
		}
		autosize, err := cmd.Flags().GetBool("autosize")
		if err != nil {
			return err
		}
		length, err := cmd.Flags().GetInt("length")
		if err != nil {
			return err
		}
		fill, err := cmd.Flags().GetString("fill")
		if err != nil {
			return err
		}

		opts := progress.DefaultOptions()
		opts.Prefix = "Progress:"
		opts.Suffix = "Complete"
		opts.Length = length
		opts.Fill = fill
		opts.Autosize = autosize

		tracker, err := progress.NewTracker(progress.New(opts), total)
		if err != nil {
			return err
		}

		if delay <= 0 {
			delay = time.Millisecond
		}
		ticker := time.NewTicker(delay)
		defer ticker.Stop()
		for !tracker.Done() {
			select {
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			case <-ticker.C:
			}
			err := tracker.Step()
			if err != nil {
				return err
			}
		}
		return nil
	},
}
