package flashcard

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CardType identifies the content layout of a card.
type CardType string

const (
	TypeTwoSided       CardType = "two_sided"
	TypeFillInBlank    CardType = "fill_in_blank"
	TypeMultipleChoice CardType = "multiple_choice"
)

// Types lists all supported card types.
var Types = []CardType{TypeTwoSided, TypeFillInBlank, TypeMultipleChoice}

// IsValid reports whether t is a supported card type.
func (t CardType) IsValid() bool {
	switch t {
	case TypeTwoSided, TypeFillInBlank, TypeMultipleChoice:
		return true
	}
	return false
}

// Content is the type-specific payload of a card. Scheduling and session
// logic never look inside it.
type Content interface {
	// Kind returns the card type this content belongs to.
	Kind() CardType
	// Prompt returns the question text shown to the learner.
	Prompt() string
}

// Compile-time interface checks.
var (
	_ Content = TwoSided{}
	_ Content = FillInBlank{}
	_ Content = MultipleChoice{}
)

// TwoSided is a traditional card with a front (prompt) and back (answer).
type TwoSided struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Kind implements Content.
func (TwoSided) Kind() CardType { return TypeTwoSided }

// Prompt implements Content.
func (t TwoSided) Prompt() string { return t.Front }

// CheckAnswer reports whether the answer matches the back side,
// ignoring case and surrounding whitespace.
func (t TwoSided) CheckAnswer(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(t.Back))
}

// FillInBlank is a cloze card. TextWithBlanks contains {blank} placeholders;
// Answers holds the expected answer for each blank in order.
type FillInBlank struct {
	TextWithBlanks string   `json:"text_with_blanks"`
	Answers        []string `json:"answers"`
	CaseSensitive  bool     `json:"case_sensitive,omitempty"`
}

// Kind implements Content.
func (FillInBlank) Kind() CardType { return TypeFillInBlank }

// Prompt implements Content. Blanks are rendered as underscores.
func (f FillInBlank) Prompt() string {
	return strings.ReplaceAll(f.TextWithBlanks, "{blank}", "_____")
}

// BlankCount returns the number of {blank} placeholders in the text.
func (f FillInBlank) BlankCount() int {
	return strings.Count(f.TextWithBlanks, "{blank}")
}

// CheckAnswers reports whether every blank was answered correctly, in order.
func (f FillInBlank) CheckAnswers(answers []string) bool {
	if len(answers) != len(f.Answers) {
		return false
	}
	for i, want := range f.Answers {
		got := strings.TrimSpace(answers[i])
		want = strings.TrimSpace(want)
		if f.CaseSensitive {
			if got != want {
				return false
			}
		} else if !strings.EqualFold(got, want) {
			return false
		}
	}
	return true
}

// MultipleChoice is a card with a question and a fixed set of options, one
// or more of which are correct.
type MultipleChoice struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	CorrectIndices []int    `json:"correct_indices"`
	AllowMultiple  bool     `json:"allow_multiple,omitempty"`
}

// Kind implements Content.
func (MultipleChoice) Kind() CardType { return TypeMultipleChoice }

// Prompt implements Content. Options are labeled A, B, C, ...
func (m MultipleChoice) Prompt() string {
	var b strings.Builder
	b.WriteString(m.Question)
	b.WriteString("\n")
	for i, opt := range m.Options {
		fmt.Fprintf(&b, "\n%c. %s", 'A'+i, opt)
	}
	return b.String()
}

// CheckSelection reports whether the selected option indices exactly match
// the correct set, in any order.
func (m MultipleChoice) CheckSelection(selected []int) bool {
	if len(selected) != len(m.CorrectIndices) {
		return false
	}
	want := make(map[int]bool, len(m.CorrectIndices))
	for _, i := range m.CorrectIndices {
		want[i] = true
	}
	for _, i := range selected {
		if !want[i] {
			return false
		}
	}
	return true
}

// UnmarshalContent decodes a content payload according to the card type.
func UnmarshalContent(t CardType, data []byte) (Content, error) {
	switch t {
	case TypeTwoSided:
		var c TwoSided
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidContent, t, err)
		}
		return c, nil
	case TypeFillInBlank:
		var c FillInBlank
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidContent, t, err)
		}
		return c, nil
	case TypeMultipleChoice:
		var c MultipleChoice
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidContent, t, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCardType, string(t))
	}
}
