package checkout

// Stage represents where a buyer is in the checkout flow
type Stage string

const (
	StageCart     Stage = "CART"
	StageShipping Stage = "SHIPPING"
	StageReview   Stage = "REVIEW"
	StagePlaced   Stage = "PLACED"
	StageFailed   Stage = "FAILED"
)

// IsValid checks if the stage is a valid checkout Stage
func (s Stage) IsValid() bool {
	switch s {
	case StageCart, StageShipping, StageReview, StagePlaced, StageFailed:
		return true
	}
	return false
}

// String returns the string representation of Stage
func (s Stage) String() string {
	return string(s)
}

// CanTransitionTo checks if the stage can transition to the target stage
func (s Stage) CanTransitionTo(target Stage) bool {
	switch s {
	case StageCart:
		return target == StageShipping
	case StageShipping:
		return target == StageReview
	case StageReview:
		return target == StagePlaced || target == StageFailed
	case StagePlaced, StageFailed:
		return false // Terminal stages
	}
	return false
}

// IsTerminal returns true once the flow can no longer advance
func (s Stage) IsTerminal() bool {
	return s == StagePlaced || s == StageFailed
}
