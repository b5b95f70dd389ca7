package enums

import "fmt"

// ObjectState is the lifecycle of a queue entry.
type ObjectState string

const (
	ObjectStatePending    ObjectState = "Pending"
	ObjectStateInProgress ObjectState = "In Progress"
	ObjectStateCompleted  ObjectState = "Completed"
	ObjectStateCancelled  ObjectState = "Cancelled"
	ObjectStateArchived   ObjectState = "Archived"
)

var validObjectStates = []ObjectState{
	ObjectStatePending,
	ObjectStateInProgress,
	ObjectStateCompleted,
	ObjectStateCancelled,
	ObjectStateArchived,
}

var objectStateTransitions = map[ObjectState]map[ObjectState]bool{
	ObjectStatePending: {
		ObjectStateInProgress: true,
		ObjectStateCompleted:  true,
		ObjectStateCancelled:  true,
	},
	ObjectStateInProgress: {
		ObjectStateCompleted: true,
		ObjectStateCancelled: true,
	},
	ObjectStateCompleted: {ObjectStateArchived: true},
	ObjectStateCancelled: {ObjectStateArchived: true},
	ObjectStateArchived:  {},
}

// String implements fmt.Stringer.
func (o ObjectState) String() string {
	return string(o)
}

// IsValid reports whether the value is a known ObjectState.
func (o ObjectState) IsValid() bool {
	for _, candidate := range validObjectStates {
		if candidate == o {
			return true
		}
	}
	return false
}

// CanTransition reports whether next is reachable from o in one step.
func (o ObjectState) CanTransition(next ObjectState) bool {
	return objectStateTransitions[o][next]
}

// SourcesFor lists every state that may move into target.
func SourcesFor(target ObjectState) []ObjectState {
	sources := make([]ObjectState, 0, len(validObjectStates))
	for _, candidate := range validObjectStates {
		if objectStateTransitions[candidate][target] {
			sources = append(sources, candidate)
		}
	}
	return sources
}

// ParseObjectState converts raw input into an ObjectState.
func ParseObjectState(value string) (ObjectState, error) {
	for _, candidate := range validObjectStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid object state %q", value)
}
