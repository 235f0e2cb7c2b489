// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package variant

// Type discriminator values used in the "$type" field of encoded
// composite values.
const (
	TypeVector2     = "Vector2"
	TypeVector3     = "Vector3"
	TypeColor       = "Color"
	TypeRect2       = "Rect2"
	TypeTransform2D = "Transform2D"
	TypeTransform3D = "Transform3D"
)

// Vector2 is a 2D vector or point.
type Vector2 struct {
	X float64
	Y float64
}

// Vector3 is a 3D vector or point.
type Vector3 struct {
	X float64
	Y float64
	Z float64
}

// Color is an RGBA color with components in the 0..1 range. Values
// outside the range are preserved (the engine uses overbright colors
// for HDR modulation).
type Color struct {
	R float64
	G float64
	B float64
	A float64
}

// Rect2 is an axis-aligned rectangle defined by position and size.
type Rect2 struct {
	Position Vector2
	Size     Vector2
}

// Transform2D is a 2x3 affine transform: two basis columns and an
// origin.
type Transform2D struct {
	X      Vector2
	Y      Vector2
	Origin Vector2
}

// Transform3D is a 3x4 affine transform: three basis columns and an
// origin.
type Transform3D struct {
	X      Vector3
	Y      Vector3
	Z      Vector3
	Origin Vector3
}
