package engine

import (
	"encoding/json"
	"sync"
	"testing"

	"territory-engine/internal/catalog"
	"territory-engine/internal/district"
	"territory-engine/internal/geo"
	"territory-engine/internal/mode"
	"territory-engine/internal/projection"
	"territory-engine/internal/territory"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtin(t *testing.T) *catalog.File {
	t.Helper()
	f, err := catalog.Builtin()
	require.NoError(t, err)
	return f
}

func viewport(f *catalog.File) projection.Viewport {
	return projection.Viewport{Center: f.DefaultView.GeoPoint, Zoom: f.DefaultView.Zoom, Width: 1024, Height: 768}
}

func newEngine(t *testing.T, src *district.Source) (*Engine, *catalog.File) {
	f := builtin(t)
	e := New(Config{Bounds: f.Bounds, Modes: mode.FromCatalogs(f.Catalogs), View: viewport(f)}, src)
	return e, f
}

func roxie(t *testing.T, f *catalog.File) geo.Landmark {
	c, ok := f.Find("theaters")
	require.True(t, ok)
	return c.Landmarks[0]
}

// 11 个并排的方块行政区，均位于裁剪框内
func squares() *district.Source {
	var list []district.District
	for n := 1; n <= 11; n++ {
		x0 := -122.50 + 0.01*float64(n-1)
		x1 := x0 + 0.01
		list = append(list, district.District{Number: n, Shape: orb.MultiPolygon{{{
			{x0, 37.72}, {x1, 37.72}, {x1, 37.73}, {x0, 37.73}, {x0, 37.72},
		}}}})
	}
	ds, _ := district.NewDataset(list)
	src := district.NewSource("", nil, nil, 0)
	src.Set(ds)
	return src
}

func districtCenter(n int) geo.GeoPoint {
	return geo.GeoPoint{Longitude: -122.50 + 0.01*float64(n-1) + 0.005, Latitude: 37.725}
}

func TestInitialFrame(t *testing.T) {
	e, _ := newEngine(t, nil)
	fr := e.Frame()
	assert.Equal(t, mode.None, fr.Mode)
	assert.True(t, fr.Ready)
	assert.Empty(t, fr.Cells.Features)
	assert.Nil(t, fr.Focus)
	assert.True(t, fr.Switches.ShowEliminated)
	assert.Len(t, e.Modes(), 11)
}

func TestSetModeBuildsCells(t *testing.T) {
	e, _ := newEngine(t, nil)
	m, err := e.SetMode("theaters")
	require.NoError(t, err)
	assert.False(t, m.UsesDistricts)
	fr := e.Frame()
	assert.Len(t, fr.Landmarks, 16)
	assert.Len(t, fr.Cells.Features, 16)
	assert.Equal(t, "Roxie Theater", fr.Cells.Features[0].Properties["name"])

	_, err = e.SetMode("bogus")
	assert.ErrorIs(t, err, mode.ErrUnknownMode)
	assert.Equal(t, "theaters", e.Frame().Mode)
}

func TestEliminateToggleClearsFocus(t *testing.T) {
	e, _ := newEngine(t, nil)
	_, err := e.SetMode("theaters")
	require.NoError(t, err)

	_, err = e.Eliminate(false)
	assert.ErrorIs(t, err, territory.ErrNoFocus)
	assert.ErrorIs(t, e.FocusLandmark("nowhere"), ErrUnknownLandmark)

	require.NoError(t, e.FocusLandmark("Roxie Theater"))
	st, err := e.Eliminate(false)
	require.NoError(t, err)
	assert.Equal(t, territory.Eliminated, st)

	fr := e.Frame()
	assert.Nil(t, fr.Focus)
	require.Len(t, fr.Eliminated.Features, 1)
	assert.Equal(t, "Roxie Theater", fr.Eliminated.Features[0].Properties["key"])

	// 重新聚焦后弹窗反映已淘汰状态
	require.NoError(t, e.FocusLandmark("Roxie Theater"))
	fr = e.Frame()
	require.NotNil(t, fr.Focus)
	assert.True(t, fr.Focus.Eliminated)
	assert.False(t, fr.Focus.OthersEliminated)

	// 其余与本体互相独立
	st, err = e.Eliminate(true)
	require.NoError(t, err)
	assert.Equal(t, territory.Eliminated, st)
	fr = e.Frame()
	assert.Nil(t, fr.Focus)
	require.Len(t, fr.Eliminated.Features, 2)
	others := fr.Eliminated.Features[1]
	assert.Equal(t, "Roxie Theater-others", others.Properties["key"])
	assert.Len(t, others.Geometry.(orb.MultiPolygon), 15)

	_, err = e.Eliminate(false)
	assert.ErrorIs(t, err, territory.ErrNoFocus)

	require.NoError(t, e.FocusLandmark("Roxie Theater"))
	st, err = e.Eliminate(false)
	require.NoError(t, err)
	assert.Equal(t, territory.Active, st)
	fr = e.Frame()
	assert.Nil(t, fr.Focus)
	require.Len(t, fr.Eliminated.Features, 1)
	assert.Equal(t, "Roxie Theater-others", fr.Eliminated.Features[0].Properties["key"])
}

func TestFailedEliminateKeepsFocus(t *testing.T) {
	e, _ := newEngine(t, nil)
	_, _ = e.SetMode("theaters")
	require.NoError(t, e.FocusLandmark("Roxie Theater"))
	e.mu.Lock()
	e.view = projection.Viewport{}
	e.mu.Unlock()
	_, err := e.Eliminate(false)
	assert.ErrorIs(t, err, projection.ErrNotReady)
	require.NotNil(t, e.Frame().Focus)
	assert.Equal(t, "Roxie Theater", e.Frame().Focus.Name)
}

func TestConcurrentEventsPublishLatestFrameLast(t *testing.T) {
	e, f := newEngine(t, nil)
	_, _ = e.SetMode("theaters")
	c, _ := f.Find("theaters")

	var mu sync.Mutex
	var got []Frame
	cancel := e.Subscribe(func(fr Frame) {
		mu.Lock()
		got = append(got, fr)
		mu.Unlock()
	})
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		lm := c.Landmarks[i]
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = e.FocusLandmark(lm.Name)
				_, _ = e.Eliminate(j%2 == 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				e.Dismiss()
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		require.Greater(t, got[i].Seq, got[i-1].Seq)
	}
	last, cur := got[len(got)-1], e.Frame()
	assert.Equal(t, cur.Seq, last.Seq)
	assert.Equal(t, cur.Focus, last.Focus)
	assert.Equal(t, len(cur.Eliminated.Features), len(last.Eliminated.Features))
}

func TestModeSwitchClearsFocusKeepsEliminations(t *testing.T) {
	e, _ := newEngine(t, nil)
	_, _ = e.SetMode("theaters")
	require.NoError(t, e.FocusLandmark("Roxie Theater"))
	_, err := e.Eliminate(false)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, _ = e.SetMode("hospitals")
		assert.Nil(t, e.Frame().Focus)
		_, _ = e.SetMode("theaters")
		fr := e.Frame()
		assert.Nil(t, fr.Focus)
		assert.Len(t, fr.Eliminated.Features, 1)
	}
}

func TestClickFocusAndDismiss(t *testing.T) {
	e, f := newEngine(t, nil)
	_, _ = e.SetMode("theaters")
	r := roxie(t, f)

	res := e.Click(r.GeoPoint)
	require.Equal(t, ClickFocus, res.Action)
	assert.Equal(t, "Roxie Theater", res.Focus.Name)
	assert.Equal(t, r.GeoPoint, res.Focus.Anchor)

	res = e.Click(r.GeoPoint)
	assert.Equal(t, ClickDismiss, res.Action)
	assert.Nil(t, e.Frame().Focus)

	// 裁剪框外
	res = e.Click(geo.GeoPoint{Longitude: -121, Latitude: 37})
	assert.Equal(t, ClickNone, res.Action)
}

func TestZap(t *testing.T) {
	e, f := newEngine(t, nil)
	_, _ = e.SetMode("theaters")
	r := roxie(t, f)
	require.NoError(t, e.FocusLandmark(r.Name))
	_, err := e.Eliminate(false)
	require.NoError(t, err)
	e.Dismiss()

	e.SetSwitches(Switches{ShowEliminated: false, ZapperMode: true})
	assert.Nil(t, e.Zap(r.GeoPoint))
	assert.Empty(t, e.Frame().Eliminated.Features)

	// 清除模式但隐藏已淘汰区域：点击走普通聚焦
	assert.Equal(t, ClickFocus, e.Click(r.GeoPoint).Action)
	e.Dismiss()

	e.SetSwitches(Switches{ShowEliminated: true, ZapperMode: true})
	res := e.Click(geo.GeoPoint{Longitude: -121, Latitude: 37})
	assert.Equal(t, ClickZap, res.Action)
	assert.Empty(t, res.Zapped)

	res = e.Click(r.GeoPoint)
	assert.Equal(t, ClickZap, res.Action)
	assert.Equal(t, []territory.ID{territory.CellID(r.Name)}, res.Zapped)
	assert.Empty(t, e.Frame().Eliminated.Features)
}

func TestDistrictModeWithoutData(t *testing.T) {
	e, _ := newEngine(t, district.NewSource("", nil, nil, 0))
	m, err := e.SetMode(mode.SupervisorDistricts)
	require.NoError(t, err)
	assert.True(t, m.UsesDistricts)

	assert.Equal(t, ClickNone, e.Click(districtCenter(3)).Action)
	fr := e.Frame()
	assert.Empty(t, fr.Districts.Features)
	assert.Empty(t, fr.Cells.Features)
}

func TestDistrictScenario(t *testing.T) {
	e, _ := newEngine(t, squares())
	_, err := e.SetMode(mode.SupervisorDistricts)
	require.NoError(t, err)
	assert.Len(t, e.Frame().Districts.Features, 11)

	res := e.Click(districtCenter(3))
	require.Equal(t, ClickFocus, res.Action)
	assert.Equal(t, 3, res.Focus.District)
	assert.Equal(t, "3", res.Focus.Name)

	st, err := e.Eliminate(true)
	require.NoError(t, err)
	assert.Equal(t, territory.Eliminated, st)
	fr := e.Frame()
	assert.Nil(t, fr.Focus)
	require.Len(t, fr.Eliminated.Features, 1)
	ft := fr.Eliminated.Features[0]
	assert.Equal(t, "district-3-others", ft.Properties["key"])
	mp := ft.Geometry.(orb.MultiPolygon)
	assert.Len(t, mp, 10)
	for n := 1; n <= 11; n++ {
		in := planar.MultiPolygonContains(mp, districtCenter(n).Orb())
		assert.Equal(t, n != 3, in, "district %d", n)
	}

	require.Equal(t, ClickFocus, e.Click(districtCenter(3)).Action)
	st, err = e.Eliminate(true)
	require.NoError(t, err)
	assert.Equal(t, territory.Active, st)
	assert.Empty(t, e.Frame().Eliminated.Features)

	require.Equal(t, ClickFocus, e.Click(districtCenter(5)).Action)
	_, err = e.Eliminate(false)
	require.NoError(t, err)
	assert.Equal(t, "district-5", e.Frame().Eliminated.Features[0].Properties["key"])
}

func TestDistrictLoadPublishesFrame(t *testing.T) {
	src := district.NewSource("", nil, nil, 0)
	e, _ := newEngine(t, src)
	_, _ = e.SetMode(mode.SupervisorDistricts)

	var got []Frame
	cancel := e.Subscribe(func(f Frame) { got = append(got, f) })
	src.Set(squares().Dataset())
	require.Len(t, got, 1)
	assert.Len(t, got[0].Districts.Features, 11)

	cancel()
	e.Dismiss()
	assert.Len(t, got, 1)
}

func TestViewNotReadyThenGeometryOnly(t *testing.T) {
	f := builtin(t)
	e := New(Config{Bounds: f.Bounds, Modes: mode.FromCatalogs(f.Catalogs)}, nil)
	_, _ = e.SetMode("theaters")
	assert.False(t, e.Frame().Ready)
	assert.Empty(t, e.Frame().Cells.Features)

	require.NoError(t, e.FocusLandmark("Roxie Theater"))
	_, err := e.Eliminate(false)
	assert.ErrorIs(t, err, projection.ErrNotReady)

	// 手势进行中：只刷新平面图，格子不发布，但淘汰仍可用
	assert.True(t, e.ViewChanged(viewport(f), false))
	assert.Empty(t, e.Frame().Cells.Features)
	st, err := e.Eliminate(false)
	require.NoError(t, err)
	assert.Equal(t, territory.Eliminated, st)

	assert.True(t, e.ViewChanged(viewport(f), true))
	assert.Len(t, e.Frame().Cells.Features, 16)
}

func TestHighlightMine(t *testing.T) {
	e, f := newEngine(t, squares())
	_, _ = e.SetMode("theaters")
	r := roxie(t, f)
	e.SetLocation(r.GeoPoint)
	assert.Empty(t, e.Frame().Highlight.Cells)

	e.SetSwitches(Switches{ShowEliminated: true, HighlightMine: true})
	assert.Equal(t, []string{r.Name}, e.Frame().Highlight.Cells)

	_, _ = e.SetMode(mode.SupervisorDistricts)
	e.SetLocation(districtCenter(7))
	fr := e.Frame()
	assert.Equal(t, []int{7}, fr.Highlight.Districts)
	assert.Empty(t, fr.Highlight.Cells)
}

func TestFrameJSON(t *testing.T) {
	e, _ := newEngine(t, nil)
	_, _ = e.SetMode("aquariums")
	require.NoError(t, e.FocusLandmark("Aquarium of the Bay"))
	b, err := json.Marshal(e.Frame())
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "aquariums", out["mode"])
	cells := out["cells"].(map[string]any)
	assert.Equal(t, "FeatureCollection", cells["type"])
	assert.Len(t, cells["features"], 2)
	focus := out["focus"].(map[string]any)
	assert.Equal(t, "landmark", focus["kind"])
	assert.Equal(t, false, focus["eliminated"])
	lms := out["landmarks"].([]any)
	assert.Equal(t, "California Academy of Sciences", lms[0].(map[string]any)["name"])
}
