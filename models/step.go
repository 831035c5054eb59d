package models

import "fmt"

// Step identifies one of the four ordered typing challenges in a match.
// The set is closed: anything else is rejected at the API boundary
// before it reaches the state machine.
type Step string

const (
	StepPhrase            Step = "phrase"
	StepWords             Step = "words"
	StepLettersAndSymbols Step = "lettersAndSymbols"
	StepHolds             Step = "holds"
)

// OrderedSteps lists the steps in play order. StepHolds is the final
// step; completing it decides the winner.
var OrderedSteps = []Step{StepPhrase, StepWords, StepLettersAndSymbols, StepHolds}

// ParseStep validates a step name coming off the wire.
func ParseStep(s string) (Step, error) {
	switch Step(s) {
	case StepPhrase, StepWords, StepLettersAndSymbols, StepHolds:
		return Step(s), nil
	}
	return "", fmt.Errorf("unknown step %q", s)
}
