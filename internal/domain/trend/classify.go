package trend

// Momentum is a coarse direction label derived from the signal score
type Momentum string

// Lifecycle is a coarse stage label derived from the signal score
type Lifecycle string

const (
	MomentumRising Momentum = "rising"
	MomentumStable Momentum = "stable"

	LifecycleNew       Lifecycle = "new"
	LifecycleRising    Lifecycle = "rising"
	LifecyclePeak      Lifecycle = "peak"
	LifecycleDeclining Lifecycle = "declining"
)

// MomentumFor returns rising above 70 and stable otherwise
func MomentumFor(score int) Momentum {
	if score > 70 {
		return MomentumRising
	}
	return MomentumStable
}

// LifecycleFor maps a score onto the new/rising/peak/declining bands
func LifecycleFor(score int) Lifecycle {
	switch {
	case score >= 80:
		return LifecycleNew
	case score >= 60:
		return LifecycleRising
	case score >= 40:
		return LifecyclePeak
	default:
		return LifecycleDeclining
	}
}
