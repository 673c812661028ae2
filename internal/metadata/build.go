package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/psdplots/plot-catalog-service/internal/domain"
)

// StationFetcher looks up one station in an external inventory.
type StationFetcher interface {
	Station(ctx context.Context, network, station string) (domain.StationMetadata, error)
}

// Archive lists the network and station directories to look up.
type Archive interface {
	Path(segments ...string) (string, error)
	ListDirs(path string) ([]string, error)
}

// Documents are the two files the catalog reads at startup.
type Documents struct {
	SiteNames map[string]map[string]string
	Stations  map[string]domain.StationMetadata
}

// Build looks up every station directory of the archive. A failed lookup
// logs a warning and records an empty site name for that station.
func Build(ctx context.Context, a Archive, f StationFetcher, logger *slog.Logger) (Documents, error) {
	docs := Documents{
		SiteNames: make(map[string]map[string]string),
		Stations:  make(map[string]domain.StationMetadata),
	}

	root, err := a.Path()
	if err != nil {
		return docs, err
	}
	networks, err := a.ListDirs(root)
	if err != nil {
		return docs, fmt.Errorf("list networks: %w", err)
	}

	for _, net := range networks {
		netPath, err := a.Path(net)
		if err != nil {
			logger.Warn("skipping network", "network", net, "error", err)
			continue
		}
		stations, err := a.ListDirs(netPath)
		if err != nil {
			logger.Warn("skipping network", "network", net, "error", err)
			continue
		}

		docs.SiteNames[net] = make(map[string]string, len(stations))
		for _, sta := range stations {
			if err := ctx.Err(); err != nil {
				return docs, err
			}
			docs.SiteNames[net][sta] = ""

			meta, err := f.Station(ctx, net, sta)
			if err != nil {
				logger.Warn("could not fetch station", "network", net, "station", sta, "error", err)
				continue
			}
			docs.SiteNames[net][sta] = meta.SiteName
			docs.Stations[meta.Key()] = meta
		}
	}

	logger.Info("station lookup complete",
		"networks", len(docs.SiteNames),
		"stations", len(docs.Stations),
	)
	return docs, nil
}

// Write stores the site-name and station-metadata documents. An empty path
// skips that document.
func (d Documents) Write(siteNamesPath, stationMetaPath string) error {
	if siteNamesPath != "" {
		if err := writeJSON(siteNamesPath, d.SiteNames); err != nil {
			return err
		}
	}
	if stationMetaPath != "" {
		if err := writeJSON(stationMetaPath, d.Stations); err != nil {
			return err
		}
	}
	return nil
}

// writeJSON writes v atomically through a temporary file in the same directory.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // already renamed on success

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
