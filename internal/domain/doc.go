// Package domain models the seismic quality-control plot archive.
//
// # Archive Layout
//
// Plots are pre-rendered images stored in a fixed three-level hierarchy:
//
//	<root>/<NETWORK>/<STATION>/<CHANNEL>/<plot>.{jpg,png}
//
// Network and station codes are FDSN codes (e.g. "HL", "ATH"). Channel codes
// follow the SEED convention: band code, instrument code, orientation code,
// e.g. "HHZ" = high broadband, high-gain seismometer, vertical component.
//
// # Plot Names
//
// The plot name is the file stem. Known names cover fixed time windows and
// are presented in this order:
//
//	week, two_weeks, month, year, full
//
// Unknown names are kept and listed after the known ones, alphabetically.
//
// # Sensor Families
//
// The two-character band/instrument prefix of a channel selects its family:
//
//	HH  high broadband
//	EH  short period
//	HN  strong motion
//
// Everything else falls into OTHER. Stations are listed under a single family
// (first of HH, EH, HN they have any channel for); channels are classified
// independently on a station's own page. See [Group].
//
// # Thumbnails
//
// Each node is represented by one image chosen by a five-tier priority policy
// (see [Tier]). Vertical-component "full" plots from HH channels are preferred,
// then any vertical "full" plot, then windowed vertical plots, then any image.
//
// # Station Metadata
//
// Two read-only JSON documents describe stations: a site-name table keyed by
// network then station, and a richer record keyed by "NET.STA" carrying
// coordinates and channel codes. Both are optional.
package domain
