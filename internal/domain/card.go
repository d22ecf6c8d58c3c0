package domain

import (
	"time"

	"github.com/google/uuid"
)

// CardMedia holds optional media links attached to the question side.
type CardMedia struct {
	Image string `json:"image,omitempty"`
	Audio string `json:"audio,omitempty"`
}

// ChoiceOption is a single multiple-choice option with an optional
// explanation of why it is (or is not) correct.
type ChoiceOption struct {
	ChoiceLetter string `json:"choice_letter"`
	Text         string `json:"text"`
	Explanation  string `json:"explanation,omitempty"`
}

// CollapsibleSection is an additional titled content block shown collapsed
// on the answer side.
type CollapsibleSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CardContent is the full structured content of one flashcard as produced
// by the language model. The JSON tags are the wire schema the model is
// instructed to emit; only Question and Answer are required, everything
// else is filled in when the model can do so meaningfully.
type CardContent struct {
	// Card metadata
	CardType   string   `json:"card_type,omitempty"`
	Topic      string   `json:"topic,omitempty"`
	Subtopic   string   `json:"subtopic,omitempty"`
	Title      string   `json:"title,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
	Tags       []string `json:"tags,omitempty"`

	// Front of the card (question section)
	Question        string         `json:"front_question_text"`
	QuestionContext string         `json:"front_question_context,omitempty"`
	Hint            string         `json:"front_question_hint,omitempty"`
	Example         string         `json:"front_question_example,omitempty"`
	QuestionCode    string         `json:"front_question_code,omitempty"`
	Media           *CardMedia     `json:"front_question_media,omitempty"`
	MultipleChoice  []ChoiceOption `json:"front_question_multiple_choice,omitempty"`

	// Back of the card (answer section)
	Answer       string               `json:"back_answer"`
	Explanation  string               `json:"back_explanation,omitempty"`
	Collapsibles []CollapsibleSection `json:"back_collapsibles,omitempty"`
	CodeSolution string               `json:"back_code_solution,omitempty"`
	Related      []string             `json:"back_related,omitempty"`
	Mnemonics    string               `json:"back_mnemonics,omitempty"`

	// Card sources
	Sources []string `json:"sources,omitempty"`
}

// Card is a flashcard record with its generation envelope. Cards are
// created by the synthesizer from model output and are never mutated once
// appended to an accumulated list.
type Card struct {
	ID        uuid.UUID   `json:"id"`
	Content   CardContent `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewCard creates a Card from validated content. It generates a new UUID
// for the card ID and stamps the creation time. Returns an error if the
// content fails validation.
func NewCard(content CardContent) (Card, error) {
	card := Card{
		ID:        uuid.New(),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := card.Validate(); err != nil {
		return Card{}, err
	}

	return card, nil
}

// Validate checks that the card carries the required fields.
// Question text and answer are the only mandatory fields; everything else
// is optional.
func (c Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.Content.Question == "" {
		return ErrCardQuestionEmpty
	}

	if c.Content.Answer == "" {
		return ErrCardAnswerEmpty
	}

	return nil
}

// DisplayTitle returns the card title when one was generated, falling back
// to the question text.
func (c Card) DisplayTitle() string {
	if c.Content.Title != "" {
		return c.Content.Title
	}
	return c.Content.Question
}
