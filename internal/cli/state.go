package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/state"
)

type stateView struct {
	Theme         domain.Theme        `json:"theme"`
	ActiveType    domain.CreationKind `json:"activeType"`
	ActiveStyle   domain.Style        `json:"activeStyle"`
	Keywords      domain.Facets       `json:"keywords"`
	ImageKeywords domain.Facets       `json:"imageKeywords"`
	History       int                 `json:"history"`
	Favorites     int                 `json:"favorites"`
	Providers     map[string]bool     `json:"providers"`
	LastSaved     *time.Time          `json:"lastSaved,omitempty"`
}

func (c *cli) stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the saved selections and collection sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.studio(cmd)
			if err != nil {
				return err
			}
			return c.printState(cmd, s.State())
		},
	}
}

func (c *cli) printState(cmd *cobra.Command, st state.State) error {
	v := stateView{
		Theme:         st.Theme,
		ActiveType:    st.ActiveType,
		ActiveStyle:   st.ActiveStyle,
		Keywords:      st.Keywords,
		ImageKeywords: st.ImageKeywords,
		History:       len(st.History),
		Favorites:     len(st.Collections),
		Providers:     c.app.Providers(),
	}
	if t, ok := c.app.LastSaved(cmd.Context()); ok {
		v.LastSaved = &t
	}
	if c.format == formatJSON {
		return c.printJSON(v)
	}

	c.printf("theme      %s\n", v.Theme)
	c.printf("type       %s\n", v.ActiveType)
	c.printf("style      %s\n", v.ActiveStyle)
	c.printf("keywords   %s\n", facetList(v.Keywords))
	c.printf("image kw   %s\n", facetList(v.ImageKeywords))
	c.printf("history    %d/%d\n", v.History, domain.HistoryLimit)
	c.printf("favorites  %d/%d\n", v.Favorites, domain.FavoritesLimit)
	for _, id := range []string{"openai", "gemini"} {
		if ok, known := v.Providers[id]; known {
			mark := "✗"
			if ok {
				mark = "✓"
			}
			c.printf("%-10s %s\n", id, mark)
		}
	}
	if v.LastSaved != nil {
		c.printf("saved      %s\n", v.LastSaved.Local().Format(time.DateTime))
	}
	return nil
}

func facetList(f domain.Facets) string {
	if !f.HasAny() {
		return "-"
	}
	parts := make([]string, 0, len(f))
	for _, k := range f.Keys() {
		if f[k] != "" {
			parts = append(parts, k+"="+f[k])
		}
	}
	return strings.Join(parts, ", ")
}
