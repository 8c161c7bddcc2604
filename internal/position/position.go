// Package position allocates float ordering keys among siblings without
// renumbering the siblings that stay in place.
package position

// Sibling is the minimal view of an ordered row.
type Sibling struct {
	Id       int64
	Position float64
}

// First is the position given to the first child of a parent.
const First = 1.0

// Calculate returns the position that places the row identified by id at
// targetIndex among siblings. siblings must be in sibling order and may
// include the row itself; it is ignored. targetIndex is clamped.
func Calculate(id int64, targetIndex int, siblings []Sibling) float64 {
	others := make([]Sibling, 0, len(siblings))
	for _, s := range siblings {
		if s.Id != id {
			others = append(others, s)
		}
	}

	if len(others) == 0 {
		return First
	}
	if targetIndex < 0 {
		targetIndex = 0
	}
	if targetIndex > len(others) {
		targetIndex = len(others)
	}

	if targetIndex == 0 {
		next := others[0].Position
		if next > 0 {
			return next / 2
		}
		return next - 1
	}
	if targetIndex == len(others) {
		return others[len(others)-1].Position + 1
	}

	prev := others[targetIndex-1].Position
	next := others[targetIndex].Position
	return prev + (next-prev)/2
}

// Append returns the position after the last sibling.
func Append(siblings []Sibling) float64 {
	if len(siblings) == 0 {
		return First
	}
	return siblings[len(siblings)-1].Position + 1
}
