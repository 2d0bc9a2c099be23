package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nturan/flashgram-bot/internal/flashcard"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new card",
	Long: `Adds a card from a JSON content payload. The payload shape depends on
the card type:

  two_sided        {"front": "...", "back": "..."}
  fill_in_blank    {"text_with_blanks": "a {blank} c", "answers": ["b"]}
  multiple_choice  {"question": "...", "options": ["..."], "correct_indices": [0]}

With --content - (or no --content) the payload is read from stdin.`,
	Example: `  flashgram add --type two_sided --content '{"front":"der Hund","back":"dog"}' --tags german
  cat card.json | flashgram add --type multiple_choice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		typeName, _ := cmd.Flags().GetString("type")
		payload, _ := cmd.Flags().GetString("content")
		title, _ := cmd.Flags().GetString("title")
		tags, _ := cmd.Flags().GetStringSlice("tags")

		cardType := flashcard.CardType(typeName)
		if !cardType.IsValid() {
			return fmt.Errorf("unknown card type %q, valid types: %v", typeName, flashcard.Types)
		}

		raw := []byte(payload)
		if payload == "" || payload == "-" {
			var err error
			raw, err = io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read content from stdin: %w", err)
			}
		}
		content, err := flashcard.ValidateContent(cardType, raw)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		card := flashcard.New(st.NewCardID(), ownerID(cmd), content, time.Now())
		card.Title = title
		card.Tags = tags
		if err := st.SaveCard(cmd.Context(), &card); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added %s card %s (due now)\n", card.Type, card.ID)
		return nil
	},
}

func init() {
	addCmd.Flags().String("type", string(flashcard.TypeTwoSided), "Card type: two_sided, fill_in_blank or multiple_choice")
	addCmd.Flags().String("content", "", "JSON content payload (- or empty reads stdin)")
	addCmd.Flags().String("title", "", "Optional card title")
	addCmd.Flags().StringSlice("tags", nil, "Comma-separated tags")
}
