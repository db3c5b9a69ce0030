// Package logo computes the intro/outro brand treatment: when it is visible,
// how opaque it is and what it consists of.
package logo

import "github.com/ZacxDev/arcadescript/internal/numeric"

// Envelope is the fade-in, hold, fade-out opacity curve in seconds.
type Envelope struct {
	FadeIn  float64
	Hold    float64
	FadeOut float64
}

// DefaultEnvelope shows the logo for three seconds at each end.
var DefaultEnvelope = Envelope{FadeIn: 0.5, Hold: 2.0, FadeOut: 0.5}

// Span is the total length of one appearance.
func (e Envelope) Span() float64 {
	return e.FadeIn + e.Hold + e.FadeOut
}

// Alpha returns the logo opacity at time t of a timeline lasting duration
// seconds. The intro is evaluated from the start and wins when the timeline
// is too short for both; the outro is the same curve evaluated on the time
// remaining, so the two ends mirror each other.
func (e Envelope) Alpha(t, duration float64) float64 {
	span := e.Span()
	switch {
	case t < span:
		return e.at(t)
	case t > duration-span:
		return e.at(duration - t)
	default:
		return 0
	}
}

// at evaluates one appearance x seconds after it starts.
func (e Envelope) at(x float64) float64 {
	var a float64
	switch {
	case x < e.FadeIn:
		a = ratio(x, e.FadeIn)
	case x < e.FadeIn+e.Hold:
		a = 1
	default:
		a = 1 - ratio(x-(e.FadeIn+e.Hold), e.FadeOut)
	}
	return numeric.Unit(a)
}

func ratio(x, d float64) float64 {
	if d <= 0 {
		return 1
	}
	return x / d
}

// Alpha evaluates DefaultEnvelope.
func Alpha(t, duration float64) float64 {
	return DefaultEnvelope.Alpha(t, duration)
}
