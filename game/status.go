package game

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle value reported after every operation on a game.
// The numeric values are stable and shared with external collaborators.
type Status int

const (
	Win Status = iota + 101
	Lose
	Tie
	InvalidMove
	InProgress
	MaxTrialReached
	Error
)

var statusNames = map[Status]string{
	Win:             "WIN",
	Lose:            "LOSE",
	Tie:             "TIE",
	InvalidMove:     "INVALID_MOVE",
	InProgress:      "IN_PROGRESS",
	MaxTrialReached: "MAX_TRIAL_REACHED",
	Error:           "ERROR",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// IsTerminal reports whether no further moves are accepted.
func (s Status) IsTerminal() bool {
	return s == Win || s == Lose || s == Tie
}

func ParseStatus(name string) (Status, error) {
	for status, n := range statusNames {
		if n == name {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", name)
}

func (s Status) MarshalJSON() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("cannot marshal status %d", int(s))
	}
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("status must be a string: %w", err)
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
