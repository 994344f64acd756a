package task

// Status is the workflow state of a task. Values are the wire strings.
type Status string

const (
	StatusPending    Status = "Pendiente"
	StatusInProgress Status = "En curso"
	StatusDone       Status = "Terminada"
	StatusCancelled  Status = "Cancelada"
)

func (s Status) String() string { return string(s) }

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus converts a wire value to a Status. The empty string yields
// StatusPending.
func ParseStatus(v string) (Status, bool) {
	if v == "" {
		return StatusPending, true
	}
	s := Status(v)
	return s, s.Valid()
}

// CanTransition reports whether a task may move from one status to another.
//
//	Pendiente -> En curso, Cancelada
//	En curso  -> Terminada, Cancelada
//	Terminada -> Cancelada
//	Cancelada is terminal.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusInProgress || to == StatusCancelled
	case StatusInProgress:
		return to == StatusDone || to == StatusCancelled
	case StatusDone:
		return to == StatusCancelled
	default:
		return false
	}
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled
}

// Priority ranks a task. Values are the wire strings.
type Priority string

const (
	PriorityHigh   Priority = "Alta"
	PriorityMedium Priority = "Media"
	PriorityLow    Priority = "Baja"
)

func (p Priority) String() string { return string(p) }

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ParsePriority converts a wire value to a Priority. The empty string yields
// PriorityMedium.
func ParsePriority(v string) (Priority, bool) {
	if v == "" {
		return PriorityMedium, true
	}
	p := Priority(v)
	return p, p.Valid()
}
