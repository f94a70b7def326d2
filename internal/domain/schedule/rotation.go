package schedule

import "strconv"

type slotKind uint8

const (
	slotRest slotKind = iota
	slotShift
)

// RotationSlot is either a rest day or a reference to a defined shift.
type RotationSlot struct {
	kind  slotKind
	index int
}

func Rest() RotationSlot {
	return RotationSlot{kind: slotRest}
}

func Shift(index int) RotationSlot {
	return RotationSlot{kind: slotShift, index: index}
}

func (r RotationSlot) IsRest() bool {
	return r.kind == slotRest
}

// ShiftIndex returns the referenced shift; ok is false for rest days.
func (r RotationSlot) ShiftIndex() (index int, ok bool) {
	if r.kind != slotShift {
		return 0, false
	}
	return r.index, true
}

func (r RotationSlot) String() string {
	if r.IsRest() {
		return "rest"
	}
	return "shift#" + strconv.Itoa(r.index)
}

// ParseRotation converts the stored integer pattern where 0 marks a rest day.
func ParseRotation(pattern []int) []RotationSlot {
	slots := make([]RotationSlot, len(pattern))
	for i, v := range pattern {
		if v == 0 {
			slots[i] = Rest()
			continue
		}
		slots[i] = Shift(v)
	}
	return slots
}

// EncodeRotation is the inverse of ParseRotation.
func EncodeRotation(slots []RotationSlot) []int {
	pattern := make([]int, len(slots))
	for i, s := range slots {
		if idx, ok := s.ShiftIndex(); ok {
			pattern[i] = idx
		}
	}
	return pattern
}
