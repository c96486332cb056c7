// Package scroll holds the rules the page uses to restyle the navigation bar
// and to land section jumps below the fixed header.
package scroll

const (
	// NavThreshold is the vertical offset past which the nav bar turns solid.
	NavThreshold = 50
	// HeaderOffset is subtracted from a section's position when jumping to it,
	// so the section lands just under the fixed header.
	HeaderOffset = 80
)

// Scrolled reports whether offset is past threshold. It depends only on the
// current offset: there is no hysteresis and no debounce.
func Scrolled(offset, threshold float64) bool {
	return offset > threshold
}

// NavStyle is the pair of class sets the nav bar switches between.
type NavStyle struct {
	Resting  string
	Scrolled string
}

var DefaultNavStyle = NavStyle{
	Resting:  "bg-transparent py-6",
	Scrolled: "bg-black/80 backdrop-blur-md py-4",
}

func (s NavStyle) Classes(scrolled bool) string {
	if scrolled {
		return s.Scrolled
	}
	return s.Resting
}
