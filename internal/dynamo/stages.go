package dynamo

// StageValues holds the stage derivatives k_i of one step. A classical
// scheme produces a single array; an additive scheme produces one array
// per part (f1 and f2). The zero value holds no stages.
type StageValues struct {
	parts [][]State
}

// SingleStages wraps the stage array of a classical scheme.
func SingleStages(k []State) StageValues {
	return StageValues{parts: [][]State{k}}
}

// PairStages wraps the stage arrays of an additive scheme.
func PairStages(nonStiff, stiff []State) StageValues {
	return StageValues{parts: [][]State{nonStiff, stiff}}
}

// Parts returns the number of stage arrays: 0, 1 or 2.
func (s StageValues) Parts() int { return len(s.parts) }

// Part returns the i-th stage array.
func (s StageValues) Part(i int) []State { return s.parts[i] }

func (s StageValues) Single() ([]State, bool) {
	if len(s.parts) != 1 {
		return nil, false
	}
	return s.parts[0], true
}

func (s StageValues) Pair() (nonStiff, stiff []State, ok bool) {
	if len(s.parts) != 2 {
		return nil, nil, false
	}
	return s.parts[0], s.parts[1], true
}

// Clone deep-copies every stage vector.
func (s StageValues) Clone() StageValues {
	out := StageValues{parts: make([][]State, len(s.parts))}
	for p, part := range s.parts {
		out.parts[p] = make([]State, len(part))
		for i, k := range part {
			out.parts[p][i] = k.Clone()
		}
	}
	return out
}
