// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"reflect"
	"testing"
)

func TestRoundTripTypedValues(t *testing.T) {
	values := []any{
		Vector2{X: 1.5, Y: -2},
		Vector3{X: 0, Y: 10, Z: 3.25},
		Color{R: 0.1, G: 0.2, B: 0.3, A: 0.5},
		Rect2{Position: Vector2{X: 1, Y: 2}, Size: Vector2{X: 3, Y: 4}},
		Transform2D{
			X:      Vector2{X: 1, Y: 0},
			Y:      Vector2{X: 0, Y: 1},
			Origin: Vector2{X: 5, Y: 6},
		},
		Transform3D{
			X:      Vector3{X: 1, Y: 0, Z: 0},
			Y:      Vector3{X: 0, Y: 1, Z: 0},
			Z:      Vector3{X: 0, Y: 0, Z: 1},
			Origin: Vector3{X: 7, Y: 8, Z: 9},
		},
	}
	for _, value := range values {
		decoded := Decode(Encode(value))
		if !reflect.DeepEqual(decoded, value) {
			t.Errorf("round trip of %T: got %#v, want %#v", value, decoded, value)
		}
	}
}

func TestRoundTripPlainValues(t *testing.T) {
	values := []any{true, "text", 3.5, nil}
	for _, value := range values {
		decoded := Decode(Encode(value))
		if !reflect.DeepEqual(decoded, value) {
			t.Errorf("round trip of %#v: got %#v", value, decoded)
		}
	}
}

func TestRoundTripNested(t *testing.T) {
	value := []any{
		Vector2{X: 1, Y: 2},
		map[string]any{"speed": Vector3{X: 0, Y: 0, Z: -1}, "label": "x"},
	}
	decoded := Decode(Encode(value))
	if !reflect.DeepEqual(decoded, value) {
		t.Errorf("nested round trip: got %#v, want %#v", decoded, value)
	}
}

// Malformed $type payloads must decode to plain structures, never
// error and never produce a typed value.
func TestDecodeMalformedFallsBackToPlainMap(t *testing.T) {
	cases := []map[string]any{
		{"$type": "Vector2", "x": 1.0},                            // missing y
		{"$type": "Vector3", "x": 1.0, "y": "two", "z": 3.0},      // wrong field type
		{"$type": "Rect2", "position": map[string]any{"x": 1.0}},  // incomplete nested vector
		{"$type": "Nonexistent", "value": 5.0},                    // unknown discriminator
		{"$type": 17.0, "x": 1.0, "y": 2.0},                       // non-string discriminator
		{"$type": "Transform2D", "x": map[string]any{"x": 0.0}},   // missing members
	}
	for _, payload := range cases {
		decoded := Decode(payload)
		result, isMap := decoded.(map[string]any)
		if !isMap {
			t.Errorf("Decode(%v): got %T, want plain map", payload, decoded)
			continue
		}
		if _, kept := result["$type"]; !kept {
			t.Errorf("Decode(%v): fallback map dropped the $type key", payload)
		}
	}
}

func TestDecodeColorAlphaDefaultsToOne(t *testing.T) {
	decoded := Decode(map[string]any{"$type": "Color", "r": 0.5, "g": 0.25, "b": 1.0})
	color, ok := decoded.(Color)
	if !ok {
		t.Fatalf("got %T, want Color", decoded)
	}
	if color.A != 1 {
		t.Errorf("alpha: got %v, want 1", color.A)
	}
}

func TestDecodeAcceptsIntegerNumbers(t *testing.T) {
	decoded := Decode(map[string]any{"$type": "Vector2", "x": 1, "y": 2})
	vector, ok := decoded.(Vector2)
	if !ok {
		t.Fatalf("got %T, want Vector2", decoded)
	}
	if vector.X != 1 || vector.Y != 2 {
		t.Errorf("got %+v, want {1 2}", vector)
	}
}

func TestEncodeUnrepresentableIsNil(t *testing.T) {
	if encoded := Encode(make(chan int)); encoded != nil {
		t.Errorf("got %#v, want nil", encoded)
	}
}
