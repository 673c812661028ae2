// Package thumbnail picks the single representative image of an archive node
// (network, station or channel) and caches the choice.
package thumbnail

import (
	"context"
	"strings"

	"github.com/psdplots/plot-catalog-service/internal/archive"
	"github.com/psdplots/plot-catalog-service/internal/domain"
)

// Walker visits the regular files of a subtree in lexical order.
type Walker interface {
	Walk(ctx context.Context, root string, fn func(archive.Entry) bool) error
}

var windowPlots = map[string]bool{
	"week.jpg": true, "week.png": true,
	"two_weeks.jpg": true, "two_weeks.png": true,
	"month.jpg": true, "month.png": true,
	"year.jpg": true, "year.png": true,
}

// tierOf classifies a single file. ok is false when the file is not an image.
func tierOf(e archive.Entry) (domain.Tier, bool) {
	hhz := strings.HasSuffix(e.Channel, "HHZ")
	vertical := strings.HasSuffix(e.Channel, "Z")

	switch {
	case e.Name == "full.jpg" && hhz:
		return domain.TierHHZFull, true
	case e.Name == "full.jpg" && vertical:
		return domain.TierVerticalFull, true
	case windowPlots[e.Name] && hhz:
		return domain.TierHHZWindow, true
	case windowPlots[e.Name] && vertical:
		return domain.TierVerticalWindow, true
	case archive.IsImage(e.Name):
		return domain.TierFallback, true
	default:
		return 0, false
	}
}

// Select walks root and returns the highest-priority image below it. The walk
// stops at the first HHZ full plot; otherwise the first file of the best tier
// seen wins. ok is false when the subtree holds no image.
func Select(ctx context.Context, w Walker, root string) (choice domain.ThumbnailChoice, ok bool, visited int, err error) {
	err = w.Walk(ctx, root, func(e archive.Entry) bool {
		visited++
		tier, image := tierOf(e)
		if !image {
			return true
		}
		if !ok || tier < choice.Tier {
			choice = domain.ThumbnailChoice{Path: e.RelPath, Tier: tier}
			ok = true
		}
		return tier != domain.TierHHZFull
	})
	if err != nil {
		return domain.ThumbnailChoice{}, false, visited, err
	}
	return choice, ok, visited, nil
}
