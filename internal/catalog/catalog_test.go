package catalog

import (
	"strings"
	"testing"

	"territory-engine/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCatalogs(t *testing.T) {
	f, err := Builtin()
	require.NoError(t, err)
	assert.InDelta(t, -122.519303, f.Bounds.TopLeft.Longitude, 1e-9)
	assert.InDelta(t, 37.708856, f.Bounds.BottomRight.Latitude, 1e-9)
	assert.InDelta(t, 12, f.DefaultView.Zoom, 1e-9)

	want := map[string]int{
		"aquariums": 2, "theaters": 16, "mountains": 16, "golf_courses": 8, "hospitals": 16,
		"dog_parks": 33, "libraries": 29, "farmers_markets": 17, "foreign_consulates": 38,
	}
	require.Len(t, f.Catalogs, len(want))
	for _, c := range f.Catalogs {
		assert.Len(t, c.Landmarks, want[c.ID], c.ID)
		assert.NotEmpty(t, c.Label)
	}

	th, ok := f.Find("theaters")
	require.True(t, ok)
	assert.Equal(t, "Roxie Theater", th.Landmarks[0].Name)
	assert.InDelta(t, -122.4224335454349, th.Landmarks[0].Longitude, 1e-12)
}

func TestParseRejectsDuplicateNames(t *testing.T) {
	doc := `
bounds:
  top_left: {lng: 0, lat: 1}
  bottom_right: {lng: 1, lat: 0}
catalogs:
  - id: x
    landmarks:
      - {name: a, lng: 0.1, lat: 0.1}
      - {name: a, lng: 0.2, lat: 0.2}
`
	_, err := Parse([]byte(doc))
	assert.ErrorContains(t, err, "duplicate landmark")
}

func TestParseRequiresBounds(t *testing.T) {
	_, err := Parse([]byte("catalogs: []\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate(Catalog{}))
	assert.Error(t, Validate(Catalog{ID: "x", Landmarks: []geo.Landmark{{}}}))
	assert.NoError(t, Validate(Catalog{ID: "x", Landmarks: []geo.Landmark{{Name: "a"}}}))
}

func TestReadCSV(t *testing.T) {
	in := "Title,Latitude,Longitude,Notes\n" +
		"Mission Library,37.7503,-122.4187,x\n" +
		"Broken,abc,-122.4,\n" +
		",37.7,-122.4,\n" +
		"Noe Valley, 37.7497 ,-122.4329,y\n"
	ls, skipped, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, ls, 2)
	assert.Equal(t, "Mission Library", ls[0].Name)
	assert.InDelta(t, -122.4187, ls[0].Longitude, 1e-9)
	assert.InDelta(t, 37.7497, ls[1].Latitude, 1e-9)
}

func TestReadCSVSemicolon(t *testing.T) {
	in := "name;latitude;longitude\nA;37.1;-122.1\n"
	ls, _, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ls, 1)
	assert.Equal(t, "A", ls[0].Name)
}

func TestReadCSVMissingColumns(t *testing.T) {
	_, _, err := ReadCSV(strings.NewReader("name,lat,lon\nA,1,2\n"))
	assert.Error(t, err)
}
