package booking

import "fmt"

// Step is the wizard page the rider is on.
type Step int

const (
	StepLocations Step = 1
	StepVehicle   Step = 2
	StepConfirm   Step = 3
)

// stepTransitions is the wizard's linear flow. Back navigation is always one step.
var stepTransitions = map[Step][]Step{
	StepLocations: {StepVehicle},
	StepVehicle:   {StepLocations, StepConfirm},
	StepConfirm:   {StepVehicle},
}

// IsValid returns true if the step is one of the three wizard pages.
func (s Step) IsValid() bool {
	_, exists := stepTransitions[s]
	return exists
}

// CanTransitionTo returns true if moving from this step to the target is allowed.
func (s Step) CanTransitionTo(target Step) bool {
	for _, t := range stepTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s Step) String() string {
	switch s {
	case StepLocations:
		return "locations"
	case StepVehicle:
		return "vehicle"
	case StepConfirm:
		return "confirm"
	}
	return fmt.Sprintf("step(%d)", int(s))
}
