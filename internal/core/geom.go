// Package core provides fundamental types and utilities for the castle
// defense platform. It contains no external dependencies (especially no
// Bubble Tea) to keep simulation logic pure and testable.
package core

import "math"

// Vec2 is a point or velocity in continuous world coordinates.
type Vec2 struct {
	X, Y float64
}

// Add returns the component-wise sum of two vectors.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// AngleTo returns the angle in radians from v toward the target point.
func (v Vec2) AngleTo(target Vec2) float64 {
	return math.Atan2(target.Y-v.Y, target.X-v.X)
}

// FromAngle returns a vector of the given magnitude along an angle.
func FromAngle(angle, magnitude float64) Vec2 {
	return Vec2{
		X: math.Cos(angle) * magnitude,
		Y: math.Sin(angle) * magnitude,
	}
}

// RectF is an axis-aligned bounding box in world coordinates, used for
// entity collision detection.
type RectF struct {
	X, Y float64 // Top-left corner
	W, H float64 // Width and height
}

// RectAround builds a bounding box centered on a point with the given
// half-extents.
func RectAround(center Vec2, halfW, halfH float64) RectF {
	return RectF{X: center.X - halfW, Y: center.Y - halfH, W: halfW * 2, H: halfH * 2}
}

// Right returns the x-coordinate of the right edge.
func (r RectF) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r RectF) Bottom() float64 {
	return r.Y + r.H
}

// Overlaps returns true if this box overlaps with another.
// Touching edges do not count as overlap.
func (r RectF) Overlaps(other RectF) bool {
	if r.X >= other.Right() || other.X >= r.Right() {
		return false
	}
	if r.Y >= other.Bottom() || other.Y >= r.Bottom() {
		return false
	}
	return true
}

// Rect is an axis-aligned box in screen cells, used for drawing.
type Rect struct {
	X, Y int
	W, H int
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
