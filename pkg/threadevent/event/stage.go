package event

import (
	"fmt"
	"strings"
)

// Stage is the lifecycle phase an event is in.
// The set is closed; no ordering between stages is enforced.
type Stage int

const (
	// StageStart is the initial stage of every event.
	StageStart Stage = iota

	// StagePrePersistence precedes the producer persisting its changes.
	StagePrePersistence

	// StagePostPersistence follows the producer persisting its changes.
	StagePostPersistence

	// StageSuccess marks a successfully processed occurrence.
	StageSuccess

	// StageFailed marks a failed occurrence.
	StageFailed

	// StageEnd is the final stage.
	StageEnd
)

var stageNames = [...]string{
	StageStart:           "START",
	StagePrePersistence:  "PRE_PERSISTENCE",
	StagePostPersistence: "POST_PERSISTENCE",
	StageSuccess:         "SUCCESS",
	StageFailed:          "FAILED",
	StageEnd:             "END",
}

// Stages returns every stage in declaration order.
func Stages() []Stage {
	return []Stage{
		StageStart,
		StagePrePersistence,
		StagePostPersistence,
		StageSuccess,
		StageFailed,
		StageEnd,
	}
}

// Valid reports whether s is one of the declared stages.
func (s Stage) Valid() bool {
	return s >= StageStart && s <= StageEnd
}

// String returns the stage name, e.g. "PRE_PERSISTENCE".
func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// ParseStage parses a stage name. Matching is case-insensitive and accepts
// '-' in place of '_'.
func ParseStage(name string) (Stage, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	for _, s := range Stages() {
		if stageNames[s] == normalized {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown event stage: %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid event stage: %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(text []byte) error {
	parsed, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
