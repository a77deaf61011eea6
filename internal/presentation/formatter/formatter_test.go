package formatter

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-virus-feed/internal/core/cache"
	"github.com/penwyp/go-virus-feed/internal/core/timeline"
	"github.com/penwyp/go-virus-feed/internal/presentation/feed"
	"github.com/penwyp/go-virus-feed/internal/testing/fixtures"
)

func sampleScene(t *testing.T) timeline.Scene {
	t.Helper()
	records := cache.NewMemoryCache(fixtures.SampleRecords()).Get(1)
	require.Len(t, records, 3)
	scene := timeline.Layout(records, 600, 300, timeline.DefaultMargins)
	scene.EntityID = 1
	return scene
}

func sampleTiles() []feed.Tile {
	return []feed.Tile{
		{EntityID: 1, Title: "Flu", ImageRef: "images_2/flu.png", Reach: 4, Opacity: 1, Selected: true},
		{EntityID: 2, Title: "Cold, common", ImageRef: "", Reach: math.NaN(), Opacity: 0.5},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"svg": FormatSVG, " PNG ": FormatPNG, "Json": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("gif")
	assert.Error(t, err)
}

func TestNewFeedFormatter(t *testing.T) {
	for _, name := range []string{"", "table", "CSV", "json"} {
		f, err := NewFeedFormatter(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	_, err := NewFeedFormatter("xml")
	assert.Error(t, err)
}

func TestSVGSurfaceElements(t *testing.T) {
	s := NewSVGSurface(100, 50, "#111111")
	s.DrawPath([]timeline.PathCommand{
		{Op: timeline.OpMoveTo, To: timeline.Point{X: 1, Y: 2}},
		{Op: timeline.OpCurveTo, C1: timeline.Point{X: 3.333, Y: 4}, C2: timeline.Point{X: 5, Y: 6}, To: timeline.Point{X: 7, Y: 8}},
		{Op: timeline.OpLineTo, To: timeline.Point{X: 9, Y: math.NaN()}},
	}, timeline.PathStyle{Stroke: "#fff", StrokeWidth: 3, Opacity: 0.3})
	s.DrawRect(timeline.Rect{X: 5, Y: 5, Width: 10, Height: 10}, timeline.ShapeStyle{Fill: "#fff"})
	s.DrawText(20, 30, "10:00 <tv>", timeline.TextStyle{Fill: "#fff", FontSize: 14, FontFamily: "serif"})

	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="50" viewBox="0 0 100 50">`))
	assert.Contains(t, out, `<rect width="100%" height="100%" fill="#111111"/>`)
	assert.Contains(t, out, `d="M1,2 C3.33,4 5,6 7,8 L9,0"`)
	assert.Contains(t, out, `stroke-opacity="0.3"`)
	assert.Contains(t, out, `<rect x="5" y="5" width="10" height="10" fill="#fff"/>`)
	assert.Contains(t, out, `>10:00 &lt;tv&gt;</text>`)
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))

	s.Clear()
	buf.Reset()
	_, err = s.WriteTo(&buf)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "<path")
}

func TestWriteSVGDrawsScene(t *testing.T) {
	scene := sampleScene(t)

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, scene, timeline.DefaultTheme))

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "<path"))
	assert.Equal(t, len(scene.Markers)+1, strings.Count(out, "<rect"))
	assert.Equal(t, len(scene.Labels), strings.Count(out, "<text"))
	assert.Contains(t, out, ">08:00 radio</text>")
}

func TestWritePNGDecodes(t *testing.T) {
	scene := sampleScene(t)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, scene, timeline.DefaultTheme, nil))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())

	// A marker is filled white over the dark background
	m := scene.Markers[0]
	r, g, b, _ := img.At(int(scene.Origin.X+m.X+m.Width/2), int(scene.Origin.Y+m.Y+m.Height/2)).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})

	r, g, b, _ = img.At(1, 1).RGBA()
	assert.Equal(t, [3]uint32{0x1111, 0x1111, 0x1111}, [3]uint32{r, g, b})
}

func TestParseHexColor(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, parseHexColor("#fff", 1))
	assert.Equal(t, color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 128}, parseHexColor("112233", 0.5))
	assert.Equal(t, color.NRGBA{}, parseHexColor("nope", math.NaN()))
	assert.Equal(t, color.NRGBA{A: 255}, parseHexColor("#000000", 7))
}

func TestWriteJSONSanitizes(t *testing.T) {
	scene := sampleScene(t)
	scene.Points[0].Record.Reach = math.NaN()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, scene, timeline.DefaultTheme))

	var doc TimelineDocument
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, scene.EntityID, doc.Scene.EntityID)
	assert.Len(t, doc.Scene.Points, 3)
	assert.Equal(t, 0.0, doc.Scene.Points[0].Record.Reach)
	assert.Equal(t, timeline.DefaultTheme, doc.Theme)

	// the input scene is untouched
	assert.True(t, math.IsNaN(scene.Points[0].Record.Reach))
}

func TestJSONFormatterTiles(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, sampleTiles()))

	var tiles []feed.Tile
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &tiles))
	require.Len(t, tiles, 2)
	assert.True(t, tiles[0].Selected)
	assert.Equal(t, 0.0, tiles[1].Reach)
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter().Format(&buf, sampleTiles()))

	assert.Equal(t,
		"virus_id,title,num_rep,opacity,selected,image\n"+
			"1,Flu,4,1.0,true,images_2/flu.png\n"+
			"2,\"Cold, common\",-,0.5,false,\n",
		buf.String())
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter().Format(&buf, sampleTiles()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], "┌"))
	assert.Contains(t, lines[1], "Title")
	assert.Contains(t, lines[3], "* │  1 │ Flu")
	assert.Contains(t, lines[4], "Cold, common")
	assert.Contains(t, lines[6], "2 viruses")
	assert.True(t, strings.HasPrefix(lines[7], "└"))
}

func TestExporterWriteFile(t *testing.T) {
	scene := sampleScene(t)
	dir := t.TempDir()

	for _, f := range []Format{FormatSVG, FormatPNG, FormatJSON} {
		path := filepath.Join(dir, "timeline."+string(f))
		e := Exporter{Format: f, Theme: timeline.DefaultTheme}
		require.NoError(t, e.WriteFile(path, scene), f)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	err := Exporter{Format: "gif"}.WriteFile(filepath.Join(dir, "x.gif"), scene)
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "x.gif"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCheckExportSize(t *testing.T) {
	assert.NoError(t, CheckExportSize(0, 0))
	assert.NoError(t, CheckExportSize(MaxExportSide, MaxExportSide))
	assert.ErrorContains(t, CheckExportSize(MaxExportSide+1, 10), "width")
	assert.ErrorContains(t, CheckExportSize(10, -1), "height")
	assert.Error(t, CheckExportSize(math.NaN(), 10))
	assert.Error(t, CheckExportSize(10, math.Inf(1)))
}

func TestExporterRejectsOversizedScene(t *testing.T) {
	scene := sampleScene(t)
	scene.Width = 100000

	var buf bytes.Buffer
	err := Exporter{Format: FormatPNG, Theme: timeline.DefaultTheme}.Write(&buf, scene)
	assert.ErrorContains(t, err, "export width")
	assert.Zero(t, buf.Len())
}
