package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pointscape/pkg/labels"
)

// infoCommand creates the info command: a terminal summary of a dataset's
// shape, clusters and label tiers.
func (c *CLI) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info [dataset]",
		Short: "Summarize a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInfo(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runInfo(ctx context.Context, input string) error {
	d, err := c.loadDataset(ctx, input)
	if err != nil {
		return err
	}

	mode := d.Mode
	if mode == "" {
		mode = "image"
	}
	unclustered := 0
	for _, it := range d.Items {
		if it.ClusterID < 0 {
			unclustered++
		}
	}

	fmt.Println(StyleTitle.Render("Dataset"))
	printKeyValue("mode", mode)
	printKeyValue("items", fmt.Sprintf("%d (%d unclustered)", len(d.Items), unclustered))
	printKeyValue("clusters", fmt.Sprintf("%d", len(d.Clusters)))
	fmt.Println()

	clusters := make([]int, 0, len(d.Clusters))
	for i := range d.Clusters {
		clusters = append(clusters, i)
	}
	sort.Slice(clusters, func(a, b int) bool {
		return d.Clusters[clusters[a]].Rank < d.Clusters[clusters[b]].Rank
	})

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := [][]string{}
	for _, idx := range clusters {
		cl := d.Clusters[idx]
		rows = append(rows, []string{
			fmt.Sprintf("%d", cl.ID),
			cl.Label,
			fmt.Sprintf("%d", cl.Members),
			fmt.Sprintf("%d", cl.Rank),
			tierName(cl.Tier),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Label", "Members", "Rank", "Tier").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 {
				return StyleValue
			}
			return StyleDim
		})
	fmt.Println(t.Render())

	fmt.Println()
	printDetail("label tier at fit view: %s", tierName(labels.TierForZoom(1)))
	return nil
}

// tierName names a label-of-detail tier for display.
func tierName(tier int) string {
	switch tier {
	case 0:
		return "broad"
	case 1:
		return "mid"
	default:
		return "detail"
	}
}
