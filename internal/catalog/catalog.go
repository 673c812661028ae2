// Package catalog answers the read-only queries of the plot archive: network
// listing, station and channel grouping, plot ordering, search and the map.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/psdplots/plot-catalog-service/internal/archive"
	"github.com/psdplots/plot-catalog-service/internal/domain"
	"github.com/psdplots/plot-catalog-service/internal/metadata"
	"github.com/psdplots/plot-catalog-service/internal/thumbnail"
)

// Searcher answers free-text station queries.
type Searcher interface {
	Search(ctx context.Context, query string) (domain.SearchResult, error)
}

// Catalog is the query surface over one archive. All methods are safe for
// concurrent use.
type Catalog struct {
	archive  *archive.Archive
	store    *metadata.Store
	resolver thumbnail.Resolver
	searcher Searcher
	order    []string
	logger   *slog.Logger
}

// New creates a Catalog. An empty order selects DefaultNetworkOrder.
func New(a *archive.Archive, store *metadata.Store, resolver thumbnail.Resolver, searcher Searcher, order []string, logger *slog.Logger) *Catalog {
	if len(order) == 0 {
		order = DefaultNetworkOrder
	}
	return &Catalog{
		archive:  a,
		store:    store,
		resolver: resolver,
		searcher: searcher,
		order:    order,
		logger:   logger,
	}
}

// ListNetworks returns the networks in precedence order. Networks without
// any image are omitted. A missing archive root yields an empty list.
func (c *Catalog) ListNetworks(ctx context.Context) ([]domain.NetworkCard, error) {
	codes, err := c.archive.ListDirs(c.archive.Root)
	if errors.Is(err, domain.ErrNotFound) {
		c.logger.Warn("archive root not found", "path", c.archive.Root)
		return []domain.NetworkCard{}, nil
	}
	if err != nil {
		return nil, err
	}

	cards := []domain.NetworkCard{}
	for _, code := range SortNetworks(codes, c.order) {
		choice, ok, err := c.ResolveThumbnail(ctx, code)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		cards = append(cards, domain.NetworkCard{Network: code, Thumbnail: choice})
	}
	return cards, nil
}

// ResolveThumbnail returns the thumbnail of the node named by segments
// (network, station, channel). No segments selects the archive root.
func (c *Catalog) ResolveThumbnail(ctx context.Context, segments ...string) (domain.ThumbnailChoice, bool, error) {
	path, err := c.archive.Path(segments...)
	if err != nil {
		return domain.ThumbnailChoice{}, false, err
	}
	return c.resolver.Resolve(ctx, path)
}

// ListStations returns a network's stations bucketed by sensor family.
// Stations with no HH, EH or HN channel are not listed.
func (c *Catalog) ListStations(ctx context.Context, network string) (domain.StationGroups, error) {
	netPath, err := c.archive.Path(network)
	if err != nil {
		return domain.StationGroups{}, err
	}
	stations, err := c.archive.ListDirs(netPath)
	if err != nil {
		return domain.StationGroups{}, err
	}

	result := domain.StationGroups{
		Network: network,
		Groups:  make(map[domain.Group][]domain.StationCard, len(domain.StationGroupOrder)),
	}
	for _, g := range domain.StationGroupOrder {
		result.Groups[g] = []domain.StationCard{}
	}

	for _, sta := range stations {
		staPath, err := c.archive.Path(network, sta)
		if err != nil {
			continue
		}
		channels, err := c.archive.ListDirs(staPath)
		if err != nil {
			c.logger.Warn("skipping unreadable station", "network", network, "station", sta, "error", err)
			continue
		}
		group, ok := StationGroup(channels)
		if !ok {
			continue
		}

		card := domain.StationCard{
			Station:  sta,
			SiteName: c.store.SiteName(network, sta),
		}
		choice, found, err := c.resolver.Resolve(ctx, staPath)
		if err != nil {
			return domain.StationGroups{}, err
		}
		if found {
			card.Thumbnail = &choice
		}
		result.Groups[group] = append(result.Groups[group], card)
	}
	return result, nil
}

// ListChannels returns a station's channels that hold at least one plot,
// each classified by its own code. NoPlots is set when none do.
func (c *Catalog) ListChannels(ctx context.Context, network, station string) (domain.ChannelGroups, error) {
	staPath, err := c.archive.Path(network, station)
	if err != nil {
		return domain.ChannelGroups{}, err
	}
	channels, err := c.archive.ListDirs(staPath)
	if err != nil {
		return domain.ChannelGroups{}, err
	}

	result := domain.ChannelGroups{
		Network:  network,
		Station:  station,
		SiteName: c.store.SiteName(network, station),
		Groups:   make(map[domain.Group][]string, len(domain.ChannelGroupOrder)),
		Plots:    make(map[string][]domain.PlotRef),
	}
	for _, g := range domain.ChannelGroupOrder {
		result.Groups[g] = []string{}
	}

	for _, cha := range channels {
		if err := ctx.Err(); err != nil {
			return domain.ChannelGroups{}, err
		}
		chaPath, err := c.archive.Path(network, station, cha)
		if err != nil {
			continue
		}
		plots, err := c.archive.ListPlots(chaPath)
		if err != nil {
			c.logger.Warn("skipping unreadable channel", "network", network, "station", station, "channel", cha, "error", err)
			continue
		}
		if len(plots) == 0 {
			continue
		}
		g := ClassifyChannel(cha)
		result.Groups[g] = append(result.Groups[g], cha)
		result.Plots[cha] = OrderPlots(plots)
	}
	result.NoPlots = len(result.Plots) == 0
	return result, nil
}

// ListPlots returns a channel's plots in presentation order along with the
// station's metadata record, if any.
func (c *Catalog) ListPlots(_ context.Context, network, station, channel string) (domain.ChannelPlots, error) {
	chaPath, err := c.archive.Path(network, station, channel)
	if err != nil {
		return domain.ChannelPlots{}, err
	}
	plots, err := c.archive.ListPlots(chaPath)
	if err != nil {
		return domain.ChannelPlots{}, err
	}

	result := domain.ChannelPlots{
		Network:  network,
		Station:  station,
		Channel:  channel,
		SiteName: c.store.SiteName(network, station),
		Plots:    OrderPlots(plots),
		NoPlots:  len(plots) == 0,
	}
	if result.Plots == nil {
		result.Plots = []domain.PlotRef{}
	}
	if rec, ok := c.store.Metadata(network, station); ok {
		result.Metadata = &rec
	}
	return result, nil
}

// Search delegates a free-text query to the search index.
func (c *Catalog) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	return c.searcher.Search(ctx, query)
}

// StationCoordinates lists every metadata record for the map view, in
// document order.
func (c *Catalog) StationCoordinates() []domain.MapStation {
	records := c.store.All()
	stations := make([]domain.MapStation, 0, len(records))
	for _, r := range records {
		stations = append(stations, domain.MapStation{
			Network:   r.Network,
			Station:   r.Station,
			SiteName:  r.DisplayName(),
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Elevation: r.Elevation,
			Channels:  r.Channels,
		})
	}
	return stations
}

// CheckReadiness reports whether the archive root is an accessible directory.
func (c *Catalog) CheckReadiness(_ context.Context) error {
	if !c.archive.Exists(c.archive.Root) {
		return fmt.Errorf("archive root %s is not a readable directory", c.archive.Root)
	}
	return nil
}
