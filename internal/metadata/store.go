// Package metadata loads the read-only station documents that give the
// archive's raw network and station codes human-readable names and
// coordinates.
package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/psdplots/plot-catalog-service/internal/domain"
)

// Store holds the site-name table and station metadata records. It is
// immutable after construction and safe for concurrent reads.
type Store struct {
	names   map[string]map[string]string
	records []domain.StationMetadata
	byKey   map[string]int
}

// NewStore builds a Store from in-memory data. Records with a duplicate
// composite key replace the earlier record in place.
func NewStore(names map[string]map[string]string, records []domain.StationMetadata) *Store {
	s := &Store{
		names: make(map[string]map[string]string, len(names)),
		byKey: make(map[string]int, len(records)),
	}
	for net, stations := range names {
		copied := make(map[string]string, len(stations))
		for sta, name := range stations {
			copied[sta] = name
		}
		s.names[net] = copied
	}
	for _, rec := range records {
		s.put(rec.Key(), rec)
	}
	return s
}

// Load reads the site-name document and the station-metadata document.
// A missing file yields an empty table; a malformed one is an error.
func Load(siteNamesPath, stationMetaPath string, logger *slog.Logger) (*Store, error) {
	s := NewStore(nil, nil)

	names, err := readOptional(siteNamesPath, logger)
	if err != nil {
		return nil, err
	}
	if names != nil {
		if err := json.Unmarshal(names, &s.names); err != nil {
			return nil, fmt.Errorf("decode site names %s: %w", siteNamesPath, err)
		}
	}

	meta, err := readOptional(stationMetaPath, logger)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		if err := s.decodeMetadata(meta, logger); err != nil {
			return nil, fmt.Errorf("decode station metadata %s: %w", stationMetaPath, err)
		}
	}

	logger.Info("station metadata loaded",
		"site_name_networks", len(s.names),
		"station_records", len(s.records),
	)
	return s, nil
}

func readOptional(path string, logger *slog.Logger) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("metadata document not found, continuing without it", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// decodeMetadata walks the top-level object token by token so records keep
// their document order.
func (s *Store) decodeMetadata(data []byte, logger *slog.Logger) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("expected a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}

		var rec domain.StationMetadata
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("record %q: %w", key, err)
		}
		fillCodesFromKey(&rec, key)

		if _, dup := s.byKey[key]; dup {
			logger.Warn("duplicate station metadata key, keeping the last record", "key", key)
		}
		s.put(key, rec)
	}

	_, err = dec.Token()
	return err
}

// fillCodesFromKey takes missing network/station codes from the "NET.STA" key.
func fillCodesFromKey(rec *domain.StationMetadata, key string) {
	net, sta, ok := strings.Cut(key, ".")
	if !ok {
		return
	}
	if rec.Network == "" {
		rec.Network = net
	}
	if rec.Station == "" {
		rec.Station = sta
	}
}

func (s *Store) put(key string, rec domain.StationMetadata) {
	if i, ok := s.byKey[key]; ok {
		s.records[i] = rec
		return
	}
	s.byKey[key] = len(s.records)
	s.records = append(s.records, rec)
}

// SiteName returns the human-readable name of a station, or the raw station
// code when no document names it.
func (s *Store) SiteName(network, station string) string {
	if name, ok := s.LookupSiteName(network, station); ok {
		return name
	}
	return station
}

// LookupSiteName returns the station's name from the metadata record or,
// failing that, the site-name table.
func (s *Store) LookupSiteName(network, station string) (string, bool) {
	if rec, ok := s.Metadata(network, station); ok && rec.SiteName != "" {
		return rec.SiteName, true
	}
	if name := s.names[network][station]; name != "" {
		return name, true
	}
	return "", false
}

// Metadata returns the record for a station, if any.
func (s *Store) Metadata(network, station string) (domain.StationMetadata, bool) {
	i, ok := s.byKey[domain.StationKey(network, station)]
	if !ok {
		return domain.StationMetadata{}, false
	}
	return s.records[i], true
}

// All returns every metadata record in document order.
func (s *Store) All() []domain.StationMetadata {
	result := make([]domain.StationMetadata, len(s.records))
	copy(result, s.records)
	return result
}

// Len returns the number of metadata records.
func (s *Store) Len() int {
	return len(s.records)
}
