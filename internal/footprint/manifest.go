package footprint

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"slices"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/handbook-cli/internal/fetcher"
)

var (
	// ErrQuadKeyNotFound means the manifest has no row for a quadkey.
	ErrQuadKeyNotFound = eris.New("quadkey not found in dataset")
	// ErrMultipleRows means the manifest has more than one row for a quadkey.
	ErrMultipleRows = eris.New("multiple rows found for quadkey")
)

// ManifestRow is one line of the dataset links CSV.
type ManifestRow struct {
	Location   string `csv:"Location"`
	QuadKey    string `csv:"QuadKey"`
	URL        string `csv:"Url"`
	Size       string `csv:"Size"`
	UploadDate string `csv:"UploadDate"`
}

// Manifest maps quadkeys to the rows that publish them.
type Manifest struct {
	rows map[string][]ManifestRow
	size int
}

// NewManifest indexes rows by quadkey.
func NewManifest(rows []ManifestRow) *Manifest {
	m := &Manifest{rows: make(map[string][]ManifestRow)}
	for _, r := range rows {
		m.rows[r.QuadKey] = append(m.rows[r.QuadKey], r)
		m.size++
	}
	return m
}

// Len returns the number of rows in the manifest.
func (m *Manifest) Len() int { return m.size }

// Lookup returns the single row for quadkey.
func (m *Manifest) Lookup(quadkey string) (ManifestRow, error) {
	rows := m.rows[quadkey]
	switch len(rows) {
	case 1:
		return rows[0], nil
	case 0:
		return ManifestRow{}, eris.Wrapf(ErrQuadKeyNotFound, "footprint: quadkey %s", quadkey)
	default:
		return ManifestRow{}, eris.Wrapf(ErrMultipleRows, "footprint: quadkey %s (%d rows)", quadkey, len(rows))
	}
}

// ParseManifest decodes the dataset links CSV. Every column is kept as text.
func ParseManifest(r io.Reader) (*Manifest, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, eris.New("footprint: manifest is empty")
		}
		return nil, eris.Wrap(err, "footprint: read manifest header")
	}

	header := dec.Header()
	for _, col := range []string{"QuadKey", "Url"} {
		if !slices.Contains(header, col) {
			return nil, eris.Errorf("footprint: manifest missing column %q", col)
		}
	}

	var rows []ManifestRow
	for {
		var row ManifestRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrapf(err, "footprint: decode manifest row %d", len(rows)+1)
		}
		rows = append(rows, row)
	}

	return NewManifest(rows), nil
}

// LoadManifest downloads and parses the manifest at url.
func LoadManifest(ctx context.Context, f fetcher.Fetcher, url string) (*Manifest, error) {
	log := zap.L().With(zap.String("component", "footprint.manifest"), zap.String("url", url))

	body, err := f.Download(ctx, url)
	if err != nil {
		return nil, eris.Wrap(err, "footprint: download manifest")
	}
	defer body.Close() //nolint:errcheck

	m, err := ParseManifest(body)
	if err != nil {
		return nil, err
	}

	log.Info("manifest loaded", zap.Int("rows", m.Len()))
	return m, nil
}
