package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nturan/flashgram-bot/internal/session"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Abandon the current session",
	Long: "Returns the session to idle from any state. Reviews already graded\n" +
		"stay committed; the rest of the queue is dropped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, st, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		owner := ownerID(cmd)

		state, err := eng.GetSessionState(ctx, owner)
		if err != nil {
			return err
		}
		if state.Mode == session.ModeIdle {
			fmt.Fprintln(cmd.OutOrStdout(), "No session to cancel.")
			return nil
		}

		if err := eng.Cancel(ctx, owner); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %s session. Graded reviews are kept.\n", state.Mode)
		return nil
	},
}
