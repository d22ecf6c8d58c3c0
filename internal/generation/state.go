package generation

import "github.com/phrazzld/ankigen/internal/domain"

// IterationState is the state value threaded through the iteration
// controller. Transitions never mutate a state in place; each one builds
// the next state field by field so every transition's effect on every
// field is visible at the call site. The JSON tags are the checkpoint
// encoding.
type IterationState struct {
	// Topic is the subject of this generation run.
	Topic string `json:"topic"`

	// Cards is the accumulated card list. Its length never exceeds
	// MaxCards.
	Cards []domain.Card `json:"all_generated_cards"`

	// Pending holds concepts awaiting card generation.
	Pending []string `json:"concepts_to_process"`

	// Iteration counts coverage-evaluation passes, not cards.
	Iteration int `json:"iteration_count"`

	// Complete is set once the run must stop. Once set, no further
	// concepts are enumerated or processed.
	Complete bool `json:"overall_process_complete"`

	// Ceilings for the run.
	CardsPerIteration int `json:"cards_per_iteration"`
	MaxCards          int `json:"max_cards"`
	MaxIterations     int `json:"max_iterations"`
}

// NewIterationState builds the seed state for a run, applying defaults for
// unset ceilings.
func NewIterationState(topic string, maxCards, maxIterations, cardsPerIteration int) IterationState {
	if maxCards <= 0 {
		maxCards = 100
	}
	if maxIterations <= 0 {
		maxIterations = 5
	}
	if cardsPerIteration <= 0 {
		cardsPerIteration = 5
	}
	return IterationState{
		Topic:             topic,
		Cards:             nil,
		Pending:           nil,
		Iteration:         0,
		Complete:          false,
		CardsPerIteration: cardsPerIteration,
		MaxCards:          maxCards,
		MaxIterations:     maxIterations,
	}
}

// withCards returns a copy of the state with the given accumulated cards
// and pending concepts. The ceilings and topic carry over unchanged.
func (s IterationState) withCards(cards []domain.Card, pending []string) IterationState {
	return IterationState{
		Topic:             s.Topic,
		Cards:             cards,
		Pending:           pending,
		Iteration:         s.Iteration,
		Complete:          s.Complete,
		CardsPerIteration: s.CardsPerIteration,
		MaxCards:          s.MaxCards,
		MaxIterations:     s.MaxIterations,
	}
}

// terminated returns a copy of the state marked complete with no pending
// concepts, keeping the accumulated cards.
func (s IterationState) terminated(iteration int) IterationState {
	return IterationState{
		Topic:             s.Topic,
		Cards:             s.Cards,
		Pending:           nil,
		Iteration:         iteration,
		Complete:          true,
		CardsPerIteration: s.CardsPerIteration,
		MaxCards:          s.MaxCards,
		MaxIterations:     s.MaxIterations,
	}
}

// withIteration returns a copy of the state with a new iteration counter
// and pending list.
func (s IterationState) withIteration(iteration int, pending []string) IterationState {
	return IterationState{
		Topic:             s.Topic,
		Cards:             s.Cards,
		Pending:           pending,
		Iteration:         iteration,
		Complete:          s.Complete,
		CardsPerIteration: s.CardsPerIteration,
		MaxCards:          s.MaxCards,
		MaxIterations:     s.MaxIterations,
	}
}
