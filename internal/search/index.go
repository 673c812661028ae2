// Package search answers station queries against the metadata records.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/psdplots/plot-catalog-service/internal/domain"
	"github.com/psdplots/plot-catalog-service/internal/observability"
	"github.com/psdplots/plot-catalog-service/internal/thumbnail"
	"github.com/tidwall/btree"
)

// Stations is the metadata the index is built from.
type Stations interface {
	All() []domain.StationMetadata
	LookupSiteName(network, station string) (string, bool)
}

// NodePather maps network and station codes to an archive node path.
type NodePather interface {
	Path(segments ...string) (string, error)
}

type record struct {
	network  string
	station  string
	siteName string // empty when no document names the station
	haystack []string
}

// Index is an ordered, immutable station index. Iteration order is
// ascending (network, station).
type Index struct {
	records  *btree.Map[string, record]
	resolver thumbnail.Resolver
	paths    NodePather
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New builds an index over every station record.
func New(stations Stations, resolver thumbnail.Resolver, paths NodePather, logger *slog.Logger, metrics *observability.Metrics) *Index {
	idx := &Index{
		records:  btree.NewMap[string, record](0),
		resolver: resolver,
		paths:    paths,
		logger:   logger,
		metrics:  metrics,
	}
	for i, m := range stations.All() {
		name, _ := stations.LookupSiteName(m.Network, m.Station)
		idx.records.Set(indexKey(m.Network, m.Station, i), record{
			network:  m.Network,
			station:  m.Station,
			siteName: name,
			haystack: []string{
				strings.ToUpper(m.Network),
				strings.ToUpper(m.Station),
				strings.ToUpper(name),
				strings.ToUpper(m.Key()),
			},
		})
	}
	return idx
}

// indexKey orders by network, then station, then document position, so
// records that share codes under different document keys are all kept.
func indexKey(network, station string, pos int) string {
	return fmt.Sprintf("%s\x00%s\x00%08d", network, station, pos)
}

// Len returns the number of indexed station records.
func (idx *Index) Len() int {
	return idx.records.Len()
}

// Search interprets a free-text query. A blank query yields an empty result,
// a "NET.STA.CHA" query a channel redirect, anything else a case-insensitive
// substring match over network, station, site name and "NET.STA".
func (idx *Index) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	q := strings.ToUpper(strings.TrimSpace(query))
	result := domain.SearchResult{Query: q, Matches: []domain.SearchMatch{}}

	if q == "" {
		idx.metrics.SearchRequests.WithLabelValues("empty").Inc()
		result.Empty = true
		return result, nil
	}

	if ref, ok := parseChannelRef(q); ok {
		idx.metrics.SearchRequests.WithLabelValues("redirect").Inc()
		result.Redirect = &ref
		return result, nil
	}

	idx.metrics.SearchRequests.WithLabelValues("substring").Inc()
	var hits []record
	idx.records.Scan(func(_ string, r record) bool {
		for _, field := range r.haystack {
			if field != "" && strings.Contains(field, q) {
				hits = append(hits, r)
				break
			}
		}
		return true
	})

	for _, r := range hits {
		if err := ctx.Err(); err != nil {
			return domain.SearchResult{}, err
		}
		match := domain.SearchMatch{
			Network:  r.network,
			Station:  r.station,
			SiteName: r.siteName,
		}
		if match.SiteName == "" {
			match.SiteName = domain.StationKey(r.network, r.station)
		}
		match.Thumbnail = idx.thumbnail(ctx, r.network, r.station)
		result.Matches = append(result.Matches, match)
	}

	idx.metrics.SearchMatches.Observe(float64(len(result.Matches)))
	idx.logger.Debug("search", "query", q, "matches", len(result.Matches))
	return result, nil
}

func (idx *Index) thumbnail(ctx context.Context, network, station string) *domain.ThumbnailChoice {
	path, err := idx.paths.Path(network, station)
	if err != nil {
		return nil
	}
	choice, ok, err := idx.resolver.Resolve(ctx, path)
	if err != nil {
		idx.logger.Warn("search thumbnail failed", "network", network, "station", station, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	return &choice
}

// parseChannelRef accepts exactly three dot-separated codes that are each a
// valid path segment. Any other triple, such as "HL..HHZ", falls through to
// substring search.
func parseChannelRef(q string) (domain.ChannelRef, bool) {
	parts := strings.Split(q, ".")
	if len(parts) != 3 {
		return domain.ChannelRef{}, false
	}
	for _, p := range parts {
		if !domain.ValidSegment(p) {
			return domain.ChannelRef{}, false
		}
	}
	return domain.ChannelRef{Network: parts[0], Station: parts[1], Channel: parts[2]}, true
}
