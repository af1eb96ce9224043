package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/muse/internal/studio"
)

func (c *cli) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"h"},
		Short:   "Browse recent creations",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent creations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.studio(cmd)
			if err != nil {
				return err
			}
			st := s.State()
			return c.printItems(st.History, st.IsFavorite)
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one creation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.studio(cmd)
			if err != nil {
				return err
			}
			item, ok := s.Find(args[0])
			if !ok {
				return fmt.Errorf("%s: %w", args[0], studio.ErrUnknownItem)
			}
			return c.printItem(item)
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a creation from history (favorites keep their copy)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.studio(cmd)
			if err != nil {
				return err
			}
			if err := s.DeleteHistory(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			c.printf("🗑  removed %s\n", args[0])
			return nil
		},
	}

	sel := &cobra.Command{
		Use:   "select <id>",
		Short: "Restore a creation's type, style and keywords as the active inputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.studio(cmd)
			if err != nil {
				return err
			}
			item, err := s.SelectHistory(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return c.printItem(item)
		},
	}

	cmd.AddCommand(list, show, rm, sel)
	return cmd
}
