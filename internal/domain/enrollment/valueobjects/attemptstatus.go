package valueobjects

type AttemptStatus string

const (
	AttemptStatusPending   AttemptStatus = "pending"
	AttemptStatusCompleted AttemptStatus = "completed"
	AttemptStatusFailed    AttemptStatus = "failed"
)

func (s AttemptStatus) IsValid() bool {
	switch s {
	case AttemptStatusPending, AttemptStatusCompleted, AttemptStatusFailed:
		return true
	default:
		return false
	}
}

func (s AttemptStatus) IsPending() bool {
	return s == AttemptStatusPending
}

func (s AttemptStatus) IsFinal() bool {
	return s == AttemptStatusCompleted || s == AttemptStatusFailed
}

func (s AttemptStatus) String() string {
	return string(s)
}
