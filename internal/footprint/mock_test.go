package footprint

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/require"
)

// mockFetcher implements fetcher.Fetcher from an in-memory URL table.
type mockFetcher struct {
	bodies map[string][]byte
	calls  []string
}

func (m *mockFetcher) Download(_ context.Context, url string) (io.ReadCloser, error) {
	m.calls = append(m.calls, url)
	body, ok := m.bodies[url]
	if !ok {
		return nil, eris.Errorf("download: unexpected status 404 from %s", url)
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (m *mockFetcher) DownloadToFile(ctx context.Context, url string, path string) (int64, error) {
	body, err := m.Download(ctx, url)
	if err != nil {
		return 0, err
	}
	data, _ := io.ReadAll(body)
	return int64(len(data)), os.WriteFile(path, data, 0o644)
}

// squareLine renders one tile record: an axis-aligned square with its
// south-west corner at (x, y).
func squareLine(x, y, size float64) string {
	var sb strings.Builder
	sb.WriteString(`{"type":"Feature","properties":{"height":-1.0,"confidence":-1.0},"geometry":{"type":"Polygon","coordinates":[[`)
	sb.WriteString(coord(x, y) + "," + coord(x+size, y) + "," + coord(x+size, y+size) + "," + coord(x, y+size) + "," + coord(x, y))
	sb.WriteString(`]]}}`)
	return sb.String()
}

func coord(x, y float64) string {
	return "[" + strconv.FormatFloat(x, 'f', -1, 64) + "," + strconv.FormatFloat(y, 'f', -1, 64) + "]"
}

func gzipLines(t *testing.T, lines ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
