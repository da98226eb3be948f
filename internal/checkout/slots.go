package checkout

import "fmt"

// Home deliveries happen in fixed 15-minute windows between 09:00 and 18:00.
const (
	slotFirstHour   = 9
	slotLastHour    = 18
	slotStepMinutes = 15
)

// TimeSlots returns the fixed enumeration of delivery slot labels, in order.
func TimeSlots() []string {
	out := make([]string, 0, (slotLastHour-slotFirstHour)*60/slotStepMinutes)
	for hour := slotFirstHour; hour < slotLastHour; hour++ {
		for minute := 0; minute < 60; minute += slotStepMinutes {
			out = append(out, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}
	return out
}

// ValidSlot reports whether label is one of the fixed time slots.
func ValidSlot(label string) bool {
	for _, s := range TimeSlots() {
		if s == label {
			return true
		}
	}
	return false
}
