package containment

import (
	"testing"

	"territory-engine/internal/geo"
	"territory-engine/internal/projection"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

var square = orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}

func TestContainsRing(t *testing.T) {
	assert.True(t, Contains(square, orb.Point{5, 5}))
	assert.False(t, Contains(square, orb.Point{15, 5}))
	// 边界视为在内
	assert.True(t, Contains(square, orb.Point{10, 5}))
	assert.True(t, Contains(square, orb.Point{0, 0}))
}

func TestContainsDegenerateRing(t *testing.T) {
	assert.False(t, Contains(orb.Ring{}, orb.Point{0, 0}))
	assert.False(t, Contains(orb.Ring{{0, 0}, {1, 1}}, orb.Point{0, 0}))
	assert.False(t, Contains(orb.Polygon{}, orb.Point{0, 0}))
}

func TestContainsPolygonWithHole(t *testing.T) {
	hole := orb.Ring{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}}
	p := orb.Polygon{square, hole}
	assert.True(t, Contains(p, orb.Point{2, 2}))
	assert.False(t, Contains(p, orb.Point{5, 5}))
}

func TestContainsMultiPolygon(t *testing.T) {
	other := orb.Ring{{20, 20}, {30, 20}, {30, 30}, {20, 30}, {20, 20}}
	mp := orb.MultiPolygon{{square}, {other}}
	assert.True(t, Contains(mp, orb.Point{25, 25}))
	assert.True(t, Contains(mp, orb.Point{1, 1}))
	assert.False(t, Contains(mp, orb.Point{15, 15}))
}

func TestContainsBound(t *testing.T) {
	b := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}
	assert.True(t, Contains(b, orb.Point{0.5, 0.5}))
	assert.False(t, Contains(orb.Point{0, 0}, orb.Point{0, 0}))
}

func TestContainsGeoProjectsBothSides(t *testing.T) {
	v := projection.Viewport{Center: geo.GeoPoint{Longitude: -122.43, Latitude: 37.76}, Zoom: 12, Width: 800, Height: 600}
	a := projection.NewAdapter(v)
	r := orb.Ring{{-122.45, 37.75}, {-122.41, 37.75}, {-122.41, 37.78}, {-122.45, 37.78}, {-122.45, 37.75}}
	assert.True(t, ContainsGeo(a, r, geo.GeoPoint{Longitude: -122.43, Latitude: 37.76}))
	assert.False(t, ContainsGeo(a, r, geo.GeoPoint{Longitude: -122.40, Latitude: 37.76}))
	assert.True(t, ContainsGeo(a, orb.MultiPolygon{{r}}, geo.GeoPoint{Longitude: -122.43, Latitude: 37.76}))

	// 投影未就绪：静默返回 false
	assert.False(t, ContainsGeo(projection.Adapter{}, r, geo.GeoPoint{Longitude: -122.43, Latitude: 37.76}))
}
