package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/muse/internal/catalog"
	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/state"
)

type createFlags struct {
	style    string
	keywords []string
	clear    bool
}

func (c *cli) writeCmd() *cobra.Command {
	var f createFlags
	cmd := &cobra.Command{
		Use:   "write [topic...]",
		Short: "Write a story on a topic, with the selected style and keywords",
		Example: `  muse write a letter never sent --style ancient --kw era=ancient --kw plot=angst
  muse write --kw relationship=rivals`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.create(cmd, domain.KindWriting, strings.Join(args, " "), f)
		},
	}
	cmd.Flags().StringVarP(&f.style, "style", "s", "", "Writing style (ancient, modern, fantasy, cyberpunk, campus)")
	cmd.Flags().StringArrayVarP(&f.keywords, "kw", "k", nil, "Keyword as key=value, repeatable")
	cmd.Flags().BoolVar(&f.clear, "clear", false, "Forget the saved keywords first")
	return cmd
}

func (c *cli) drawCmd() *cobra.Command {
	var f createFlags
	cmd := &cobra.Command{
		Use:     "draw [prompt...]",
		Short:   "Draw an illustration from a prompt and image keywords",
		Example: `  muse draw a garden at dusk --kw lighting="golden hour"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.create(cmd, domain.KindDrawing, strings.Join(args, " "), f)
		},
	}
	cmd.Flags().StringArrayVarP(&f.keywords, "kw", "k", nil, "Image keyword as key=value, repeatable")
	cmd.Flags().BoolVar(&f.clear, "clear", false, "Forget the saved image keywords first")
	return cmd
}

func (c *cli) inspireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspire",
		Short: "Spark a character pairing and a premise",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.create(cmd, domain.KindInspiration, "", createFlags{})
		},
	}
}

// create switches to kind, applies the inputs and runs one generation.
func (c *cli) create(cmd *cobra.Command, kind domain.CreationKind, prompt string, f createFlags) error {
	ctx := cmd.Context()

	kw, err := parseFacets(c.app.Catalog(), kind, f.keywords)
	if err != nil {
		return err
	}
	if f.style != "" && !domain.Style(f.style).Valid() {
		return fmt.Errorf("unknown style %q", f.style)
	}

	s, err := c.studio(cmd)
	if err != nil {
		return err
	}
	if s.State().ActiveType != kind {
		s.Dispatch(ctx, state.SetKind{Kind: kind})
	}

	st := s.State()
	var actions []state.Action
	if f.clear {
		actions = append(actions, clearFacets(kind, st)...)
		st = applyAll(st, actions)
	}
	actions = append(actions, setFacets(kind, st, kw)...)
	if f.style != "" {
		actions = append(actions, state.SetStyle{Style: domain.Style(f.style)})
	}
	actions = append(actions, state.SetPrompt{Prompt: prompt})
	s.Dispatch(ctx, actions...)

	item, err := s.Create(ctx)
	if err != nil {
		return err
	}
	return c.printItem(item)
}

// parseFacets reads key=value pairs and checks each key against the catalog.
func parseFacets(cat *catalog.Catalog, kind domain.CreationKind, pairs []string) (domain.Facets, error) {
	out := domain.Facets{}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" {
			return nil, fmt.Errorf("keyword %q must look like key=value", p)
		}
		if err := cat.CheckFacet(kind, key); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}

// setFacets returns the toggles that make the active facets hold kw.
// Toggling is skipped where the value is already selected, since a second
// toggle would clear it.
func setFacets(kind domain.CreationKind, st state.State, kw domain.Facets) []state.Action {
	current := st.Keywords
	if kind == domain.KindDrawing {
		current = st.ImageKeywords
	}
	var actions []state.Action
	for _, key := range kw.Keys() {
		value := kw[key]
		if current.Get(key, "") == value {
			continue
		}
		actions = append(actions, toggleFacet(kind, key, value))
	}
	return actions
}

func clearFacets(kind domain.CreationKind, st state.State) []state.Action {
	current := st.Keywords
	if kind == domain.KindDrawing {
		current = st.ImageKeywords
	}
	var actions []state.Action
	for _, key := range current.Keys() {
		actions = append(actions, toggleFacet(kind, key, ""))
	}
	return actions
}

func toggleFacet(kind domain.CreationKind, key, value string) state.Action {
	if kind == domain.KindDrawing {
		return state.ToggleImageKeyword{Key: key, Value: value}
	}
	return state.ToggleKeyword{Key: key, Value: value}
}

func applyAll(st state.State, actions []state.Action) state.State {
	for _, a := range actions {
		st = state.Reduce(st, a)
	}
	return st
}
