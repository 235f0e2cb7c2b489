// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package variant

// Encode converts a native value into its wire JSON representation.
// Primitives and strings pass through; slices and maps recurse
// element-wise; the composite types become $type-tagged objects.
//
// Encode never fails. A value of an unrepresentable Go type (a
// channel, a function) is not producible by the engine's value model;
// such values encode as nil so a bug upstream surfaces as a visible
// null rather than a panic mid-response.
func Encode(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case bool, string, float64, float32, int, int32, int64:
		return v
	case Vector2:
		return encodeVector2(v)
	case Vector3:
		return encodeVector3(v)
	case Color:
		return map[string]any{
			"$type": TypeColor,
			"r":     v.R,
			"g":     v.G,
			"b":     v.B,
			"a":     v.A,
		}
	case Rect2:
		return map[string]any{
			"$type":    TypeRect2,
			"position": encodeVector2(v.Position),
			"size":     encodeVector2(v.Size),
		}
	case Transform2D:
		return map[string]any{
			"$type":  TypeTransform2D,
			"x":      encodeVector2(v.X),
			"y":      encodeVector2(v.Y),
			"origin": encodeVector2(v.Origin),
		}
	case Transform3D:
		return map[string]any{
			"$type":  TypeTransform3D,
			"x":      encodeVector3(v.X),
			"y":      encodeVector3(v.Y),
			"z":      encodeVector3(v.Z),
			"origin": encodeVector3(v.Origin),
		}
	case []any:
		encoded := make([]any, len(v))
		for i, element := range v {
			encoded[i] = Encode(element)
		}
		return encoded
	case map[string]any:
		encoded := make(map[string]any, len(v))
		for key, element := range v {
			encoded[key] = Encode(element)
		}
		return encoded
	default:
		return nil
	}
}

func encodeVector2(v Vector2) map[string]any {
	return map[string]any{"$type": TypeVector2, "x": v.X, "y": v.Y}
}

func encodeVector3(v Vector3) map[string]any {
	return map[string]any{"$type": TypeVector3, "x": v.X, "y": v.Y, "z": v.Z}
}
