package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/render"
)

const summaryWidth = 48

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.opts.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printItem shows one generated item: markdown in text mode, the item
// itself in json mode.
func (c *cli) printItem(item domain.HistoryItem) error {
	if c.format == formatJSON {
		return c.printJSON(item)
	}
	c.printf("✨ %s · %s · %s\n\n", item.ID, item.Kind, when(item.Timestamp))
	c.printf("%s", render.Markdown(item))
	return nil
}

func (c *cli) printItems(items []domain.HistoryItem, favorite func(string) bool) error {
	if c.format == formatJSON {
		if items == nil {
			items = []domain.HistoryItem{}
		}
		return c.printJSON(items)
	}
	if len(items) == 0 {
		c.printf("nothing here yet\n")
		return nil
	}

	tw := tabwriter.NewWriter(c.opts.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTYPE\tWHEN\t★\tSUMMARY")
	for _, it := range items {
		star := ""
		if favorite(it.ID) {
			star = "★"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", it.ID, it.Kind, when(it.Timestamp), star, summary(it))
	}
	return tw.Flush()
}

// summary picks the most telling field of an item for one table cell.
func summary(it domain.HistoryItem) string {
	c := it.Content
	for _, s := range []string{c.Title, c.Pairings, c.Description, it.Prompt} {
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			return truncate(s, summaryWidth)
		}
	}
	return "-"
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func when(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func favoriteItems(favs []domain.FavoriteItem) []domain.HistoryItem {
	items := make([]domain.HistoryItem, len(favs))
	for i, f := range favs {
		items[i] = f.HistoryItem
	}
	return items
}
