package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/muse/internal/render"
	"github.com/MrSnakeDoc/muse/internal/studio"
)

func (c *cli) exportCmd() *cobra.Command {
	var (
		as  string
		out string
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a creation as markdown or sanitized HTML",
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

			var doc string
			switch as {
			case "md", "markdown":
				doc = render.Markdown(item)
			case "html":
				if doc, err = render.HTML(item); err != nil {
					return err
				}
				doc += "\n"
			default:
				return fmt.Errorf("unknown export format %q, use md or html", as)
			}

			if out == "" || out == "-" {
				c.printf("%s", doc)
				return nil
			}
			if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			c.printf("📄 wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "md", "Document format: md or html")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Write to file instead of stdout")
	return cmd
}
