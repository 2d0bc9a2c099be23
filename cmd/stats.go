package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nturan/flashgram-bot/internal/flashcard"
	"github.com/nturan/flashgram-bot/internal/session"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, st, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		owner := ownerID(cmd)
		now := time.Now()

		cs, err := st.CollectionStats(ctx, owner, now)
		if err != nil {
			return err
		}
		state, err := eng.GetSessionState(ctx, owner)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Cards:    %d total, %d new, %d mastered\n",
			cs.TotalCards, cs.NewCards, cs.Mastered)
		fmt.Fprintf(out, "Due:      %d now, %d today, %d this week\n",
			cs.DueNow, cs.DueToday, cs.DueThisWeek)
		if len(cs.ByType) > 0 {
			fmt.Fprint(out, "By type: ")
			for _, t := range flashcard.Types {
				if n := cs.ByType[t]; n > 0 {
					fmt.Fprintf(out, " %s %d", t, n)
				}
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "Reviews:  %d in the last 7 days\n", cs.ReviewsLast7Days)
		fmt.Fprintf(out, "Session:  %s\n", sessionLabel(state))
		return nil
	},
}

func sessionLabel(s *session.Session) string {
	switch s.Mode {
	case session.ModeReviewing:
		return fmt.Sprintf("reviewing, %d cards left (%d graded)",
			len(s.Queue)+1, s.Stats.Total())
	case session.ModeEditing:
		return "editing card " + s.EditingCardID
	default:
		return "idle"
	}
}
