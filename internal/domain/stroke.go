package domain

type StrokeID string

// Point is a single 2D coordinate on the canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous drawing gesture. Points are append-only while
// the stroke is active; Owner is always assigned by the server from the
// authenticated sender, never taken from a client payload.
type Stroke struct {
	ID     StrokeID `json:"strokeId"`
	Owner  UserID   `json:"ownerId"`
	Points []Point  `json:"points"`
	Color  string   `json:"color,omitempty"`
	Width  float64  `json:"width,omitempty"`
}

func NewStroke(id StrokeID, owner UserID, first Point, color string, width float64) *Stroke {
	return &Stroke{
		ID:     id,
		Owner:  owner,
		Points: []Point{first},
		Color:  color,
		Width:  width,
	}
}

// Append adds one point to the tail of the stroke.
func (s *Stroke) Append(p Point) {
	s.Points = append(s.Points, p)
}

// Clone returns a copy that does not alias Points, so it can be read
// after the owner keeps appending to the original.
func (s *Stroke) Clone() *Stroke {
	c := *s
	c.Points = append([]Point(nil), s.Points...)
	return &c
}
