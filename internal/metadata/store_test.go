package metadata

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/psdplots/plot-catalog-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSiteNames = `{
  "HL": {"ATH": "Athens Observatory", "VLS": ""},
  "HT": {"THE": "Thessaloniki"}
}`
	testStationMeta = `{
  "HT.THE": {"network": "HT", "station": "THE", "latitude": 40.63, "longitude": 22.96, "elevation": 124.0, "channels": ["HHZ", "HHN", "HHE"]},
  "HL.ATH": {"network": "HL", "station": "ATH", "site_name": "Athens, Thiseio", "latitude": 37.97, "longitude": 23.72},
  "HL.VLS": {"channels": ["EHZ"]}
}`
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	names := writeFile(t, dir, "stations.json", testSiteNames)
	meta := writeFile(t, dir, "stations_meta.json", testStationMeta)

	s, err := Load(names, meta, discardLogger())
	require.NoError(t, err)
	return s
}

func TestLoad_PreservesDocumentOrder(t *testing.T) {
	s := loadTestStore(t)

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, "HT.THE", all[0].Key())
	assert.Equal(t, "HL.ATH", all[1].Key())
	assert.Equal(t, "HL.VLS", all[2].Key())
	assert.Equal(t, 3, s.Len())
}

func TestLoad_FillsCodesFromKey(t *testing.T) {
	s := loadTestStore(t)

	rec, ok := s.Metadata("HL", "VLS")
	require.True(t, ok)
	assert.Equal(t, "HL", rec.Network)
	assert.Equal(t, "VLS", rec.Station)
	assert.Equal(t, []string{"EHZ"}, rec.Channels)
	assert.Nil(t, rec.Latitude)
}

func TestLoad_Coordinates(t *testing.T) {
	s := loadTestStore(t)

	rec, ok := s.Metadata("HT", "THE")
	require.True(t, ok)
	require.NotNil(t, rec.Latitude)
	require.NotNil(t, rec.Elevation)
	assert.InDelta(t, 40.63, *rec.Latitude, 1e-9)
	assert.InDelta(t, 124.0, *rec.Elevation, 1e-9)
}

func TestSiteName_Precedence(t *testing.T) {
	s := loadTestStore(t)

	tests := []struct {
		name     string
		network  string
		station  string
		expected string
	}{
		{"metadata site name wins over table", "HL", "ATH", "Athens, Thiseio"},
		{"table used when metadata has no name", "HT", "THE", "Thessaloniki"},
		{"empty table entry falls back to code", "HL", "VLS", "VLS"},
		{"unknown station falls back to code", "HL", "XYZ", "XYZ"},
		{"unknown network falls back to code", "ZZ", "ABC", "ABC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.SiteName(tt.network, tt.station))
		})
	}
}

func TestLookupSiteName(t *testing.T) {
	s := loadTestStore(t)

	name, ok := s.LookupSiteName("HT", "THE")
	assert.True(t, ok)
	assert.Equal(t, "Thessaloniki", name)

	_, ok = s.LookupSiteName("HL", "VLS")
	assert.False(t, ok, "empty table entry is not a name")
}

func TestLoad_MissingFilesYieldEmptyStore(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(filepath.Join(dir, "nope.json"), filepath.Join(dir, "nada.json"), discardLogger())
	require.NoError(t, err)

	assert.Empty(t, s.All())
	assert.Equal(t, "ATH", s.SiteName("HL", "ATH"))
	_, ok := s.Metadata("HL", "ATH")
	assert.False(t, ok)
}

func TestLoad_EmptyPathsYieldEmptyStore(t *testing.T) {
	s, err := Load("", "", discardLogger())
	require.NoError(t, err)
	assert.Zero(t, s.Len())
}

func TestLoad_MalformedSiteNames(t *testing.T) {
	dir := t.TempDir()
	names := writeFile(t, dir, "stations.json", `{"HL": [1, 2]}`)

	_, err := Load(names, "", discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode site names")
}

func TestLoad_MalformedMetadata(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"not an object", `["HL.ATH"]`},
		{"truncated", `{"HL.ATH": {"network": "HL"`},
		{"wrong field type", `{"HL.ATH": {"latitude": "north"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := writeFile(t, dir, "meta.json", tt.content)
			_, err := Load("", meta, discardLogger())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "decode station metadata")
		})
	}
}

func TestLoad_DuplicateKeyLastWins(t *testing.T) {
	dir := t.TempDir()
	meta := writeFile(t, dir, "meta.json", `{
  "HL.ATH": {"site_name": "First"},
  "HT.THE": {"site_name": "Thessaloniki"},
  "HL.ATH": {"site_name": "Second"}
}`)

	s, err := Load("", meta, discardLogger())
	require.NoError(t, err)

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Second", all[0].SiteName, "replaced record keeps its first position")
	assert.Equal(t, "Thessaloniki", all[1].SiteName)
}

func TestAll_ReturnsCopy(t *testing.T) {
	s := NewStore(nil, []domain.StationMetadata{{Network: "HL", Station: "ATH"}})

	all := s.All()
	all[0].Station = "MUTATED"

	rec, ok := s.Metadata("HL", "ATH")
	require.True(t, ok)
	assert.Equal(t, "ATH", rec.Station)
}

func TestNewStore_CopiesNames(t *testing.T) {
	names := map[string]map[string]string{"HL": {"ATH": "Athens"}}
	s := NewStore(names, nil)
	names["HL"]["ATH"] = "Changed"

	assert.Equal(t, "Athens", s.SiteName("HL", "ATH"))
}
