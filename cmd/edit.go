package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nturan/flashgram-bot/internal/flashcard"
)

var editCmd = &cobra.Command{
	Use:   "edit <card-id>",
	Short: "Replace a card's content",
	Long: `Replaces the content of an existing card. Scheduling state (ease,
interval, due date) is untouched; only what the card shows changes.

Editing is safe mid-review: the session is suspended while the edit runs
and resumes exactly where it was.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cardID := args[0]
		payload, _ := cmd.Flags().GetString("content")
		title, _ := cmd.Flags().GetString("title")
		tags, _ := cmd.Flags().GetStringSlice("tags")

		eng, st, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		owner := ownerID(cmd)

		if err := eng.StartEdit(ctx, owner, cardID); err != nil {
			return err
		}
		// From here on the session is in editing mode; always restore it.
		editErr := func() error {
			card, err := st.LoadCard(ctx, cardID)
			if err != nil {
				return err
			}

			if payload != "" {
				raw := []byte(payload)
				if payload == "-" {
					raw, err = io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return fmt.Errorf("read content from stdin: %w", err)
					}
				}
				content, err := flashcard.ValidateContent(card.Type, raw)
				if err != nil {
					return err
				}
				card.Content = content
			}
			if cmd.Flags().Changed("title") {
				card.Title = title
			}
			if cmd.Flags().Changed("tags") {
				card.Tags = tags
			}
			card.UpdatedAt = time.Now()

			return st.SaveCard(ctx, card)
		}()

		if err := eng.FinishEdit(ctx, owner); err != nil && editErr == nil {
			editErr = err
		}
		if editErr != nil {
			return editErr
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Updated card %s\n", cardID)
		return nil
	},
}

func init() {
	editCmd.Flags().String("content", "", "New JSON content payload (- reads stdin)")
	editCmd.Flags().String("title", "", "New card title")
	editCmd.Flags().StringSlice("tags", nil, "New comma-separated tags")
	editCmd.MarkFlagsOneRequired("content", "title", "tags")
}
