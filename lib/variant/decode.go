// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package variant

// Decode converts a wire JSON value (as produced by encoding/json
// unmarshaling into any) back into a native value. Arrays recurse per
// element. An object with a recognized $type and syntactically
// complete fields constructs the corresponding composite value; any
// other object decodes as a plain map with its $type field (if
// present) left in place.
//
// Decode never returns an error. Malformed typed payloads fall back to
// the plain-map path so the request proceeds and the type mismatch
// surfaces later, as a normal property-assignment failure.
func Decode(value any) any {
	switch v := value.(type) {
	case []any:
		decoded := make([]any, len(v))
		for i, element := range v {
			decoded[i] = Decode(element)
		}
		return decoded
	case map[string]any:
		if typed, ok := decodeTyped(v); ok {
			return typed
		}
		decoded := make(map[string]any, len(v))
		for key, element := range v {
			decoded[key] = Decode(element)
		}
		return decoded
	default:
		return v
	}
}

// decodeTyped attempts to build a composite value from a $type-tagged
// object. The second return is false when the object carries no usable
// $type or any required field is missing or of the wrong shape.
func decodeTyped(object map[string]any) (any, bool) {
	tag, ok := object["$type"].(string)
	if !ok {
		return nil, false
	}

	switch tag {
	case TypeVector2:
		return decodeVector2(object)
	case TypeVector3:
		return decodeVector3(object)
	case TypeColor:
		r, okR := number(object["r"])
		g, okG := number(object["g"])
		b, okB := number(object["b"])
		if !okR || !okG || !okB {
			return nil, false
		}
		// Alpha defaults to opaque when omitted.
		a, okA := number(object["a"])
		if !okA {
			if _, present := object["a"]; present {
				return nil, false
			}
			a = 1
		}
		return Color{R: r, G: g, B: b, A: a}, true
	case TypeRect2:
		position, okP := decodeNestedVector2(object["position"])
		size, okS := decodeNestedVector2(object["size"])
		if !okP || !okS {
			return nil, false
		}
		return Rect2{Position: position, Size: size}, true
	case TypeTransform2D:
		x, okX := decodeNestedVector2(object["x"])
		y, okY := decodeNestedVector2(object["y"])
		origin, okO := decodeNestedVector2(object["origin"])
		if !okX || !okY || !okO {
			return nil, false
		}
		return Transform2D{X: x, Y: y, Origin: origin}, true
	case TypeTransform3D:
		x, okX := decodeNestedVector3(object["x"])
		y, okY := decodeNestedVector3(object["y"])
		z, okZ := decodeNestedVector3(object["z"])
		origin, okO := decodeNestedVector3(object["origin"])
		if !okX || !okY || !okZ || !okO {
			return nil, false
		}
		return Transform3D{X: x, Y: y, Z: z, Origin: origin}, true
	default:
		return nil, false
	}
}

func decodeVector2(object map[string]any) (any, bool) {
	x, okX := number(object["x"])
	y, okY := number(object["y"])
	if !okX || !okY {
		return nil, false
	}
	return Vector2{X: x, Y: y}, true
}

func decodeVector3(object map[string]any) (any, bool) {
	x, okX := number(object["x"])
	y, okY := number(object["y"])
	z, okZ := number(object["z"])
	if !okX || !okY || !okZ {
		return nil, false
	}
	return Vector3{X: x, Y: y, Z: z}, true
}

// decodeNestedVector2 accepts either a typed Vector2 object or a bare
// {x, y} object. Scene files written by hand commonly omit the $type
// tag on nested vectors.
func decodeNestedVector2(value any) (Vector2, bool) {
	object, ok := value.(map[string]any)
	if !ok {
		return Vector2{}, false
	}
	if tag, present := object["$type"]; present {
		if tagString, isString := tag.(string); !isString || tagString != TypeVector2 {
			return Vector2{}, false
		}
	}
	x, okX := number(object["x"])
	y, okY := number(object["y"])
	if !okX || !okY {
		return Vector2{}, false
	}
	return Vector2{X: x, Y: y}, true
}

func decodeNestedVector3(value any) (Vector3, bool) {
	object, ok := value.(map[string]any)
	if !ok {
		return Vector3{}, false
	}
	if tag, present := object["$type"]; present {
		if tagString, isString := tag.(string); !isString || tagString != TypeVector3 {
			return Vector3{}, false
		}
	}
	x, okX := number(object["x"])
	y, okY := number(object["y"])
	z, okZ := number(object["z"])
	if !okX || !okY || !okZ {
		return Vector3{}, false
	}
	return Vector3{X: x, Y: y, Z: z}, true
}

// number coerces any JSON numeric representation to float64. JSON
// decoding yields float64, but values constructed in Go tests may be
// int.
func number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
