package catalog

import (
	"sort"
	"strings"

	"github.com/psdplots/plot-catalog-service/internal/domain"
)

// unorderedRank places networks missing from the precedence list after every
// listed one.
const unorderedRank = 9999

// DefaultNetworkOrder is the built-in network precedence.
var DefaultNetworkOrder = []string{"HL", "HT", "HP", "HA", "HC", "CQ", "ME", "1Y", "HI", "EG", "5B", "KF"}

// SortNetworks returns codes sorted by their position in order, with unlisted
// codes after the listed ones in ascending code order. The input is not
// modified.
func SortNetworks(codes, order []string) []string {
	rank := make(map[string]int, len(order))
	for i, code := range order {
		if _, dup := rank[code]; !dup {
			rank[code] = i
		}
	}
	rankOf := func(code string) int {
		if r, ok := rank[code]; ok {
			return r
		}
		return unorderedRank
	}

	sorted := append([]string(nil), codes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := rankOf(sorted[i]), rankOf(sorted[j])
		if ri != rj {
			return ri < rj
		}
		return sorted[i] < sorted[j]
	})
	return sorted
}

// ClassifyChannel buckets one channel by its code prefix.
func ClassifyChannel(code string) domain.Group {
	for _, g := range domain.StationGroupOrder {
		if strings.HasPrefix(code, string(g)) {
			return g
		}
	}
	return domain.GroupOther
}

// StationGroup buckets a whole station by the first sensor family, in
// HH, EH, HN order, that any of its channels belongs to. ok is false when
// the station has none of them.
func StationGroup(channels []string) (domain.Group, bool) {
	for _, g := range domain.StationGroupOrder {
		for _, ch := range channels {
			if strings.HasPrefix(ch, string(g)) {
				return g, true
			}
		}
	}
	return "", false
}

// OrderPlots sorts plots into presentation order: the known plot names
// first, then the rest alphabetically.
func OrderPlots(plots []domain.PlotRef) []domain.PlotRef {
	known := make(map[string]int, len(domain.PlotOrder))
	for i, name := range domain.PlotOrder {
		known[name] = i
	}

	ordered := append([]domain.PlotRef(nil), plots...)
	sort.SliceStable(ordered, func(i, j int) bool {
		ki, iKnown := known[ordered[i].Name]
		kj, jKnown := known[ordered[j].Name]
		switch {
		case iKnown && jKnown:
			return ki < kj
		case iKnown != jKnown:
			return iKnown
		default:
			return ordered[i].Name < ordered[j].Name
		}
	})
	return ordered
}
