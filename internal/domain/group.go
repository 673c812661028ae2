package domain

// Group is a sensor-family bucket derived from a channel code prefix.
type Group string

const (
	GroupHH    Group = "HH"
	GroupEH    Group = "EH"
	GroupHN    Group = "HN"
	GroupOther Group = "OTHER"
)

// StationGroupOrder is the preference order used to bucket whole stations.
var StationGroupOrder = []Group{GroupHH, GroupEH, GroupHN}

// ChannelGroupOrder is the presentation order of channel groups on a station page.
var ChannelGroupOrder = []Group{GroupHH, GroupEH, GroupHN, GroupOther}
