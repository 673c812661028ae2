package domain

// NetworkCard is one entry of the network listing.
type NetworkCard struct {
	Network   string          `json:"network"`
	Thumbnail ThumbnailChoice `json:"thumbnail"`
}

// StationCard is one station shown on a network page.
type StationCard struct {
	Station   string           `json:"station"`
	SiteName  string           `json:"site_name"`
	Thumbnail *ThumbnailChoice `json:"thumbnail,omitempty"`
}

// StationGroups lists a network's stations bucketed by sensor family.
type StationGroups struct {
	Network string                  `json:"network"`
	Groups  map[Group][]StationCard `json:"groups"`
}

// ChannelGroups lists a station's channels bucketed by sensor family,
// each channel classified on its own.
type ChannelGroups struct {
	Network  string               `json:"network"`
	Station  string               `json:"station"`
	SiteName string               `json:"site_name"`
	Groups   map[Group][]string   `json:"groups"`
	Plots    map[string][]PlotRef `json:"plots"`
	NoPlots  bool                 `json:"no_plots"`
}

// ChannelPlots lists the plots of one channel in presentation order.
type ChannelPlots struct {
	Network  string           `json:"network"`
	Station  string           `json:"station"`
	Channel  string           `json:"channel"`
	SiteName string           `json:"site_name"`
	Plots    []PlotRef        `json:"plots"`
	Metadata *StationMetadata `json:"metadata,omitempty"`
	NoPlots  bool             `json:"no_plots"`
}

// ChannelRef identifies a channel by its full "NET.STA.CHA" code.
type ChannelRef struct {
	Network string `json:"network"`
	Station string `json:"station"`
	Channel string `json:"channel"`
}

// SearchMatch is one station matching a search query.
type SearchMatch struct {
	Network   string           `json:"network"`
	Station   string           `json:"station"`
	SiteName  string           `json:"site_name"`
	Thumbnail *ThumbnailChoice `json:"thumbnail,omitempty"`
}

// SearchResult is the outcome of a search. Exactly one of Empty, Redirect
// or Matches is meaningful.
type SearchResult struct {
	Query    string        `json:"query"`
	Empty    bool          `json:"empty,omitempty"`
	Redirect *ChannelRef   `json:"redirect,omitempty"`
	Matches  []SearchMatch `json:"matches"`
}
