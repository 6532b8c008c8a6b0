package scene

import (
	"slices"

	"github.com/Faultbox/blockview/pkg/math"
)

// sortable is what the draw-order policy needs to know about an item.
type sortable interface {
	translucent() bool
	worldCenter() math.Vec3
}

// drawOrder returns item indices in draw order: opaque items first in their
// insertion order, then translucent items from farthest to nearest eye.
func drawOrder[T sortable](items []T, eye math.Vec3) []int {
	order := make([]int, 0, len(items))
	var glass []int
	for i, it := range items {
		if it.translucent() {
			glass = append(glass, i)
		} else {
			order = append(order, i)
		}
	}

	dist := make(map[int]float32, len(glass))
	for _, i := range glass {
		dist[i] = eye.Distance(items[i].worldCenter())
	}
	slices.SortStableFunc(glass, func(a, b int) int {
		return compareFarFirst(dist[a], dist[b])
	})

	return append(order, glass...)
}

// compareFarFirst orders larger distances first. A comparison involving NaN
// is indeterminate and reports a as greater, so it sorts after b.
func compareFarFirst(a, b float32) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	case a == b:
		return 0
	default:
		return 1
	}
}

type objectItem struct{ *Object }

func (o objectItem) translucent() bool      { return o.DrawConfig().Shader.Translucent() }
func (o objectItem) worldCenter() math.Vec3 { return o.WorldCenter() }

// DrawOrder returns objects in the order the renderer draws them for a
// camera at eye.
func DrawOrder(objects []*Object, eye math.Vec3) []*Object {
	items := make([]objectItem, len(objects))
	for i, o := range objects {
		items[i] = objectItem{o}
	}
	idx := drawOrder(items, eye)
	out := make([]*Object, len(idx))
	for i, j := range idx {
		out[i] = objects[j]
	}
	return out
}
