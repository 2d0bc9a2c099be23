package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nturan/flashgram-bot/internal/flashcard"
	"github.com/nturan/flashgram-bot/internal/session"
	"github.com/nturan/flashgram-bot/internal/spacedrep"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review cards that are due",
	Long: "Starts (or resumes) a review session. Each due card is shown in turn;\n" +
		"grade your recall with again/hard/good/easy and the scheduler picks the\n" +
		"next due date. Quitting mid-session keeps your place.",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, st, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		owner := ownerID(cmd)
		ctx := cmd.Context()

		state, err := eng.GetSessionState(ctx, owner)
		if err != nil {
			return err
		}
		resuming := state.Mode == session.ModeReviewing

		card, _, err := eng.StartReview(ctx, owner, time.Now())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if card == nil {
			fmt.Fprintln(out, "Nothing due right now.")
			return nil
		}
		if resuming {
			fmt.Fprintf(out, "Resuming session, %d cards left.\n", len(state.Queue)+1)
		}

		in := bufio.NewScanner(cmd.InOrStdin())
		for card != nil {
			quit, err := presentCard(out, in, card)
			if err != nil {
				return err
			}
			if !quit {
				var grade spacedrep.Grade
				grade, quit, err = promptGrade(out, in)
				if err != nil {
					return err
				}
				if !quit {
					var summary *session.Summary
					card, summary, err = eng.ReportOutcome(ctx, owner, card.ID, grade, uuid.NewString(), time.Now())
					if err != nil {
						return err
					}
					if summary != nil {
						printSummary(out, summary)
						return nil
					}
					continue
				}
			}
			fmt.Fprintln(out, "Progress saved. Run `flashgram review` to continue.")
			return nil
		}
		return nil
	},
}

func init() {
	reviewCmd.Flags().Int("cards-per-session", 20, "Maximum cards in one session")
}

// presentCard shows the prompt, optionally self-checks a typed answer and
// reveals the back. Returns true when the learner wants to stop.
func presentCard(out io.Writer, in *bufio.Scanner, card *flashcard.Card) (quit bool, err error) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("─", 60))
	if card.Title != "" {
		fmt.Fprintf(out, "%s\n\n", card.Title)
	}
	fmt.Fprintln(out, card.Content.Prompt())
	fmt.Fprint(out, "\nType your answer, or press Enter to reveal (q quits): ")

	line, ok := readLine(in)
	if !ok {
		return true, nil
	}
	if strings.EqualFold(strings.TrimSpace(line), "q") {
		return true, nil
	}
	if answer := strings.TrimSpace(line); answer != "" {
		if correct, checked := selfCheck(card.Content, answer); checked {
			if correct {
				fmt.Fprintln(out, "✓ correct")
			} else {
				fmt.Fprintln(out, "✗ not quite")
			}
		}
	}
	fmt.Fprintf(out, "Answer: %s\n", answerText(card.Content))
	return false, nil
}

// promptGrade asks for a recall grade until it gets a valid one.
func promptGrade(out io.Writer, in *bufio.Scanner) (spacedrep.Grade, bool, error) {
	for {
		fmt.Fprint(out, "Recall? (a)gain (h)ard (g)ood (e)asy (q)uit: ")
		line, ok := readLine(in)
		if !ok {
			return 0, true, nil
		}
		switch s := strings.ToLower(strings.TrimSpace(line)); s {
		case "q", "quit":
			return 0, true, nil
		case "a":
			return spacedrep.Again, false, nil
		case "h":
			return spacedrep.Hard, false, nil
		case "g":
			return spacedrep.Good, false, nil
		case "e":
			return spacedrep.Easy, false, nil
		default:
			if grade, err := spacedrep.ParseGrade(s); err == nil {
				return grade, false, nil
			}
			fmt.Fprintln(out, "Please answer a, h, g, e or q.")
		}
	}
}

func readLine(in *bufio.Scanner) (string, bool) {
	if !in.Scan() {
		return "", false
	}
	return in.Text(), true
}

// answerText renders the card's back side for the reveal step.
func answerText(content flashcard.Content) string {
	switch c := content.(type) {
	case flashcard.TwoSided:
		return c.Back
	case flashcard.FillInBlank:
		return strings.Join(c.Answers, ", ")
	case flashcard.MultipleChoice:
		letters := make([]string, len(c.CorrectIndices))
		for i, idx := range c.CorrectIndices {
			letters[i] = fmt.Sprintf("%c. %s", 'A'+idx, c.Options[idx])
		}
		return strings.Join(letters, "; ")
	}
	return ""
}

// selfCheck grades a typed answer against the card content. checked is
// false when the input cannot be interpreted for this card type.
func selfCheck(content flashcard.Content, input string) (correct, checked bool) {
	switch c := content.(type) {
	case flashcard.TwoSided:
		return c.CheckAnswer(input), true
	case flashcard.FillInBlank:
		parts := strings.Split(input, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return c.CheckAnswers(parts), true
	case flashcard.MultipleChoice:
		var picks []int
		for _, field := range strings.FieldsFunc(strings.ToUpper(input), func(r rune) bool {
			return r == ',' || r == ' '
		}) {
			if len(field) != 1 || field[0] < 'A' || field[0] > 'Z' {
				return false, false
			}
			picks = append(picks, int(field[0]-'A'))
		}
		return c.CheckSelection(picks), true
	}
	return false, false
}

func printSummary(out io.Writer, s *session.Summary) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("─", 60))
	fmt.Fprintf(out, "Session done: %d reviewed, %d passed (%.0f%%) in %s\n",
		s.TotalReviewed, s.TotalPassed, s.Accuracy*100, s.Duration.Round(time.Second))
	fmt.Fprintf(out, "again %d, hard %d, good %d, easy %d\n",
		s.Stats.Again, s.Stats.Hard, s.Stats.Good, s.Stats.Easy)
}
