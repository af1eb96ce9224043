package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) favCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fav",
		Aliases: []string{"favorites"},
		Short:   "Manage pinned favorites",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List favorites, most recently pinned first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.studio(cmd)
			if err != nil {
				return err
			}
			if c.format == formatJSON {
				return c.printJSON(s.State().Collections)
			}
			return c.printItems(favoriteItems(s.State().Collections), func(string) bool { return true })
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Pin or unpin a creation; the change is saved immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.studio(cmd)
			if err != nil {
				return err
			}
			on, err := s.ToggleFavorite(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if on {
				c.printf("★ pinned %s\n", args[0])
			} else {
				c.printf("☆ unpinned %s\n", args[0])
			}
			return nil
		},
	}

	cmd.AddCommand(list, toggle)
	return cmd
}
