package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var errUnhealthy = errors.New("some checks failed")

func (c *cli) doctorCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check providers, catalog and storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			checks := c.app.Doctor(cmd.Context(), timeout)

			healthy := true
			for _, ch := range checks {
				healthy = healthy && ch.OK
			}

			if c.format == formatJSON {
				if err := c.printJSON(checks); err != nil {
					return err
				}
			} else {
				tw := tabwriter.NewWriter(c.opts.Out, 0, 0, 2, ' ', 0)
				for _, ch := range checks {
					mark := "✓"
					if !ch.OK {
						mark = "✗"
					}
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, ch.Name, ch.Detail, ch.Took.Round(time.Millisecond))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}

			if !healthy {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Deadline for each check")
	return cmd
}
