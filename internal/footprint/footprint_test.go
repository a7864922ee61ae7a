package footprint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

const testManifestURL = "https://example.test/dataset-links.csv"

var londonQuadkeys = []string{"031313112", "031313113", "031313130", "031313131", "120202002", "120202020"}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// londonFetcher serves a manifest and one gzipped tile per London quadkey.
// Each tile holds two footprints inside the default box and one outside it.
func londonFetcher(t *testing.T, quadkeys []string) *mockFetcher {
	t.Helper()
	f := &mockFetcher{bodies: map[string][]byte{}}

	var manifest strings.Builder
	manifest.WriteString("Location,QuadKey,Url,Size,UploadDate\n")
	for i, qk := range quadkeys {
		url := "https://example.test/tiles/" + qk + ".csv.gz"
		manifest.WriteString("UnitedKingdom," + qk + "," + url + ",1KB,2023-04-25\n")

		x := -0.5 + float64(i)*0.1
		f.bodies[url] = gzipLines(t,
			squareLine(x, 51.5, 0.001),
			squareLine(x, 51.6, 0.001),
			squareLine(x, 51.76, 0.001), // north of the box
		)
	}
	f.bodies[testManifestURL] = []byte(manifest.String())
	return f
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	scratch := t.TempDir()
	out := filepath.Join(dir, "london.geojson")
	f := londonFetcher(t, londonQuadkeys)

	sum, err := Run(context.Background(), f, Options{
		ManifestURL: testManifestURL,
		Output:      out,
		TempDir:     scratch,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, londonQuadkeys, sum.Quadkeys)
	assert.Equal(t, 12, sum.Features)
	assert.Equal(t, out, sum.Output)

	fc, err := ReadCollection(out)
	require.NoError(t, err)
	require.Len(t, fc.Features, 12)

	for i, feat := range fc.Features {
		id, ok := feat.Properties[IDProperty].(float64)
		require.True(t, ok, "feature %d id", i)
		assert.Equal(t, float64(i), id)
		assert.True(t, DefaultBBox.Within(feat.Geometry), "feature %d outside box", i)
	}

	// Scratch tiles are gone once the run returns.
	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Manifest first, then tiles in quadkey order.
	require.Len(t, f.calls, 1+len(londonQuadkeys))
	assert.Equal(t, testManifestURL, f.calls[0])
	assert.Equal(t, "https://example.test/tiles/031313112.csv.gz", f.calls[1])
}

func TestRun_WebMercatorOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "london-3857.geojson")
	f := londonFetcher(t, londonQuadkeys)

	sum, err := Run(context.Background(), f, Options{
		ManifestURL: testManifestURL,
		Output:      out,
		OutputCRS:   WebMercator,
		TempDir:     t.TempDir(),
	})
	require.NoError(t, err)
	assert.Equal(t, 12, sum.Features)

	assert.Contains(t, readFile(t, out), "urn:ogc:def:crs:EPSG::3857")

	fc, err := ReadCollection(out)
	require.NoError(t, err)
	first := fc.Features[0].Geometry.(*geom.Polygon).LinearRing(0).Coord(0)
	assert.Less(t, first[0], -50000.0)
	assert.Greater(t, first[1], 6.7e6)
}

func TestRun_MissingQuadkeyAborts(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.geojson")
	scratch := t.TempDir()
	f := londonFetcher(t, londonQuadkeys[:4])

	_, err := Run(context.Background(), f, Options{
		ManifestURL: testManifestURL,
		Output:      out,
		TempDir:     scratch,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuadKeyNotFound))
	assert.Contains(t, err.Error(), "120202002")
	assert.NoFileExists(t, out)

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_DuplicateQuadkeyAborts(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.geojson")
	f := londonFetcher(t, londonQuadkeys)
	f.bodies[testManifestURL] = append(f.bodies[testManifestURL],
		[]byte("France,031313112,https://example.test/fr.csv.gz,1KB,2023-04-25\n")...)

	_, err := Run(context.Background(), f, Options{
		ManifestURL: testManifestURL,
		Output:      out,
		TempDir:     t.TempDir(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMultipleRows))
	assert.NoFileExists(t, out)
	// Aborted on the first quadkey, before any tile download.
	assert.Len(t, f.calls, 1)
}

func TestRun_InvalidBox(t *testing.T) {
	f := &mockFetcher{}
	_, err := Run(context.Background(), f, Options{BBox: BBox{MinX: 1, MinY: 1, MaxX: 0, MaxY: 2}})
	require.Error(t, err)
	assert.Empty(t, f.calls)
}

func TestFetchTiles_ReusesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	f := londonFetcher(t, londonQuadkeys[:2])
	m, err := ParseManifest(strings.NewReader(string(f.bodies[testManifestURL])))
	require.NoError(t, err)

	existing := writeTile(t, dir, londonQuadkeys[0]+".geojson", square(0, 51.5, 0.001))

	paths, err := FetchTiles(context.Background(), f, m, londonQuadkeys[:2], dir)
	require.NoError(t, err)
	assert.Equal(t, []string{existing, filepath.Join(dir, londonQuadkeys[1]+".geojson")}, paths)
	assert.Equal(t, []string{"https://example.test/tiles/" + londonQuadkeys[1] + ".csv.gz"}, f.calls)

	fc, err := ReadCollection(existing)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	o.applyDefaults()
	assert.Equal(t, DefaultBBox, o.BBox)
	assert.Equal(t, 9, o.Zoom)
	assert.Equal(t, DefaultManifestURL, o.ManifestURL)
	assert.Equal(t, "london-boundingbox.geojson", o.Output)
	assert.Equal(t, WGS84, o.OutputCRS)
}
