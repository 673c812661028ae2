package domain

// Tier is the priority bucket that produced a thumbnail. Lower is better.
type Tier int

const (
	TierHHZFull        Tier = 1  // HHZ/full.jpg
	TierVerticalFull   Tier = 2  // *Z/full.jpg
	TierHHZWindow      Tier = 3  // HHZ/{week,two_weeks,month,year}
	TierVerticalWindow Tier = 4  // *Z/{week,two_weeks,month,year}
	TierFallback       Tier = 99 // first .jpg/.png found
)

// Tiers lists every tier in priority order.
var Tiers = []Tier{TierHHZFull, TierVerticalFull, TierHHZWindow, TierVerticalWindow, TierFallback}

func (t Tier) String() string {
	switch t {
	case TierHHZFull:
		return "hhz_full"
	case TierVerticalFull:
		return "vertical_full"
	case TierHHZWindow:
		return "hhz_window"
	case TierVerticalWindow:
		return "vertical_window"
	case TierFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// ThumbnailChoice is the image selected to represent an archive node.
// Path is slash-separated and relative to the archive root.
type ThumbnailChoice struct {
	Path string `json:"path"`
	Tier Tier   `json:"tier"`
}

// PlotOrder is the presentation order of known plot names.
var PlotOrder = []string{"week", "two_weeks", "month", "year", "full"}

// PlotRef names one plot image of a channel.
type PlotRef struct {
	Name string `json:"name"`
	Path string `json:"path"`
}
