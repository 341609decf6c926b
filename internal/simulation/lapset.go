package simulation

// LapSet is a bitmap keyed by lap number
type LapSet struct {
	bits []uint64
}

// NewLapSet builds a set from lap numbers. Laps outside [1, maxLap] are dropped
// since they can never be reached during a race.
func NewLapSet(laps []int, maxLap int) LapSet {
	highest := 0
	for _, lap := range laps {
		if lap >= 1 && lap <= maxLap && lap > highest {
			highest = lap
		}
	}
	if highest == 0 {
		return LapSet{}
	}

	set := LapSet{bits: make([]uint64, highest/64+1)}
	for _, lap := range laps {
		if lap < 1 || lap > highest {
			continue
		}
		set.bits[lap/64] |= 1 << (uint(lap) % 64)
	}
	return set
}

// Contains reports whether lap is in the set
func (s LapSet) Contains(lap int) bool {
	if lap < 0 {
		return false
	}
	idx := lap / 64
	if idx >= len(s.bits) {
		return false
	}
	return s.bits[idx]&(1<<(uint(lap)%64)) != 0
}

// Len returns the number of laps in the set
func (s LapSet) Len() int {
	count := 0
	for _, word := range s.bits {
		for word != 0 {
			word &= word - 1
			count++
		}
	}
	return count
}
