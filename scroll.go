package touchflow

import "github.com/samber/lo"

// ScrollMetrics is a snapshot of a scrollable container. All values are in
// pixels along the scroll axis.
type ScrollMetrics struct {
	Offset         float64 // distance scrolled from the top
	ViewportHeight float64
	ContentHeight  float64
}

// Remaining returns how far the viewport's trailing edge is from the end of
// the content. It is negative when the content is shorter than the viewport.
func (m ScrollMetrics) Remaining() float64 {
	return m.ContentHeight - (m.Offset + m.ViewportHeight)
}

// Progress returns the scroll position as a fraction in [0, 1]. Content that
// fits the viewport reports 1.
func (m ScrollMetrics) Progress() float64 {
	span := m.ContentHeight - m.ViewportHeight
	if span <= 0 {
		return 1
	}
	return lo.Clamp(m.Offset/span, 0, 1)
}

// AtTop reports whether the container is scrolled to its top edge.
func (m ScrollMetrics) AtTop() bool {
	return m.Offset <= 0
}

// Container is the minimal view of a scrollable region the pull controller
// needs.
type Container interface {
	ScrollTop() float64
}

// ContainerFunc adapts a function to Container.
type ContainerFunc func() float64

// ScrollTop implements Container.
func (f ContainerFunc) ScrollTop() float64 {
	return f()
}
