package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/psdplots/plot-catalog-service/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSortNetworks(t *testing.T) {
	tests := []struct {
		name  string
		codes []string
		order []string
		want  []string
	}{
		{
			name:  "listed before unlisted",
			codes: []string{"HI", "ZZ", "HL", "AA"},
			order: DefaultNetworkOrder,
			want:  []string{"HL", "HI", "AA", "ZZ"},
		},
		{
			name:  "full default order",
			codes: []string{"KF", "5B", "EG", "HI", "1Y", "ME", "CQ", "HC", "HA", "HP", "HT", "HL"},
			order: DefaultNetworkOrder,
			want:  DefaultNetworkOrder,
		},
		{
			name:  "custom order",
			codes: []string{"HL", "HT", "XX"},
			order: []string{"HT"},
			want:  []string{"HT", "HL", "XX"},
		},
		{
			name:  "empty order sorts by code",
			codes: []string{"HT", "CQ", "HL"},
			order: nil,
			want:  []string{"CQ", "HL", "HT"},
		},
		{
			name:  "no codes",
			codes: nil,
			order: DefaultNetworkOrder,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortNetworks(tt.codes, tt.order)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("SortNetworks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortNetworks_DoesNotModifyInput(t *testing.T) {
	codes := []string{"ZZ", "HL"}
	_ = SortNetworks(codes, DefaultNetworkOrder)
	assert.Equal(t, []string{"ZZ", "HL"}, codes)
}

func TestClassifyChannel(t *testing.T) {
	tests := []struct {
		code string
		want domain.Group
	}{
		{"HHZ", domain.GroupHH},
		{"HHE", domain.GroupHH},
		{"EHN", domain.GroupEH},
		{"HNZ", domain.GroupHN},
		{"BHZ", domain.GroupOther},
		{"LHZ", domain.GroupOther},
		{"H", domain.GroupOther},
		{"", domain.GroupOther},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyChannel(tt.code))
		})
	}
}

func TestStationGroup(t *testing.T) {
	tests := []struct {
		name     string
		channels []string
		want     domain.Group
		ok       bool
	}{
		{"hh wins over others", []string{"EHZ", "HNZ", "HHZ"}, domain.GroupHH, true},
		{"eh before hn", []string{"HNE", "EHZ"}, domain.GroupEH, true},
		{"hn only", []string{"HNZ", "BHZ"}, domain.GroupHN, true},
		{"none of the families", []string{"BHZ", "LHZ"}, "", false},
		{"no channels", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := StationGroup(tt.channels)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrderPlots(t *testing.T) {
	plots := []domain.PlotRef{
		{Name: "spectrogram"},
		{Name: "full"},
		{Name: "year"},
		{Name: "avail"},
		{Name: "week"},
		{Name: "two_weeks"},
		{Name: "month"},
	}

	var got []string
	for _, p := range OrderPlots(plots) {
		got = append(got, p.Name)
	}
	assert.Equal(t, []string{"week", "two_weeks", "month", "year", "full", "avail", "spectrogram"}, got)
	assert.Equal(t, "spectrogram", plots[0].Name, "input must not be reordered")
}
