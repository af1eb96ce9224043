package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/state"
)

func (c *cli) setCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change saved preferences and selections",
	}

	cmd.AddCommand(
		c.setter("theme <light|dark>", "Set the colour theme", func(v string) (state.Action, error) {
			if t := domain.Theme(v); t.Valid() {
				return state.SetTheme{Theme: t}, nil
			}
			return nil, fmt.Errorf("unknown theme %q", v)
		}),
		c.setter("kind <writing|drawing|inspiration>", "Switch the active creation type (clears the selected keywords)", func(v string) (state.Action, error) {
			if k := domain.CreationKind(v); k.Valid() {
				return state.SetKind{Kind: k}, nil
			}
			return nil, fmt.Errorf("unknown kind %q", v)
		}),
		c.setter("style <ancient|modern|fantasy|cyberpunk|campus>", "Set the writing style", func(v string) (state.Action, error) {
			if s := domain.Style(v); s.Valid() {
				return state.SetStyle{Style: s}, nil
			}
			return nil, fmt.Errorf("unknown style %q", v)
		}),
		c.facetSetter(domain.KindWriting, "keyword"),
		c.facetSetter(domain.KindDrawing, "image-keyword"),
	)
	return cmd
}

// setter builds a one-argument subcommand dispatching the action parse returns.
func (c *cli) setter(use, short string, parse func(string) (state.Action, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := parse(args[0])
			if err != nil {
				return err
			}
			s, err := c.studio(cmd)
			if err != nil {
				return err
			}
			s.Dispatch(cmd.Context(), action)
			return c.printState(cmd, s.State())
		},
	}
}

// facetSetter selects a value for a facet key, or clears the key when no
// value is given.
func (c *cli) facetSetter(kind domain.CreationKind, name string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <key> [value]",
		Short: fmt.Sprintf("Select or clear a %s keyword", kind),
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], ""
			if len(args) == 2 {
				value = args[1]
			}
			if err := c.app.Catalog().CheckFacet(kind, key); err != nil {
				return err
			}

			s, err := c.studio(cmd)
			if err != nil {
				return err
			}
			actions := setFacets(kind, s.State(), domain.Facets{key: value})
			if value == "" {
				actions = []state.Action{toggleFacet(kind, key, "")}
			}
			s.Dispatch(cmd.Context(), actions...)
			return c.printState(cmd, s.State())
		},
	}
}
