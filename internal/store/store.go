package store

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page selects a window of a listing.
type Page struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Normalize applies the default limit, caps it at MaxPageLimit and clamps a negative offset.
func (p Page) Normalize() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Window returns the [start, end) bounds of the page within a slice of length n.
func (p Page) Window(n int) (int, int) {
	p = p.Normalize()
	start := min(p.Offset, n)
	end := min(start+p.Limit, n)
	return start, end
}
