package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nturan/flashgram-bot/internal/flashcard"
	"github.com/nturan/flashgram-bot/internal/spacedrep"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List cards due for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		now := time.Now()
		cards, err := st.QueryDue(cmd.Context(), ownerID(cmd), now)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		order := spacedrep.NextDue(cards, now)
		if len(order) == 0 {
			fmt.Fprintln(out, "Nothing due right now.")
			return nil
		}

		byID := make(map[string]flashcard.Card, len(cards))
		for _, c := range cards {
			byID[c.ID] = c
		}

		fmt.Fprintf(out, "%-26s  %-15s  %-12s  %s\n", "ID", "TYPE", "DUE", "CARD")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for i, id := range order {
			if limit > 0 && i == limit {
				fmt.Fprintf(out, "… and %d more\n", len(order)-limit)
				break
			}
			c := byID[id]
			fmt.Fprintf(out, "%-26s  %-15s  %-12s  %s\n",
				c.ID, c.Type, dueLabel(c, now), cardLabel(c))
		}
		return nil
	},
}

func init() {
	dueCmd.Flags().Int("limit", 0, "Show at most this many cards (0 = all)")
}

func dueLabel(c flashcard.Card, now time.Time) string {
	if days := int(c.OverdueDays(now)); days >= 1 {
		return fmt.Sprintf("%dd overdue", days)
	}
	return "due now"
}

// cardLabel returns the title, or the first line of the prompt.
func cardLabel(c flashcard.Card) string {
	label := c.Title
	if label == "" {
		label, _, _ = strings.Cut(c.Content.Prompt(), "\n")
	}
	if len(label) > 40 {
		label = label[:40] + "…"
	}
	return label
}
