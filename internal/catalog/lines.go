package catalog

import (
	"errors"
	"fmt"

	"github.com/avsharma-lib/orchids-manga-curated6/internal/domain"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/pricing"
)

var ErrVolumeOutOfRange = errors.New("volume selection out of range")

// SingleVolumeLine freezes one volume of a multi-volume series into a
// purchasable snapshot. The derived id is "{id}-vol-{n}" and the price is the
// base per-volume price.
func SingleVolumeLine(p domain.Product, volume int) (domain.Product, error) {
	if volume < 1 || volume > p.Volumes {
		return domain.Product{}, fmt.Errorf("%w: volume %d of %d", ErrVolumeOutOfRange, volume, p.Volumes)
	}

	snap := p
	snap.ID = fmt.Sprintf("%s-vol-%d", p.ID, volume)
	snap.Title = fmt.Sprintf("%s - Volume %d", p.Title, volume)
	snap.Volumes = 1
	return snap, nil
}

// VolumeRangeLine freezes a "volumes 1..count" selection. The derived id is
// "{id}-vols-1-{n}" and both prices are the flat per-volume multiple; there
// is no bundle discount, so the snapshot keeps the single-volume discount
// percentage.
func VolumeRangeLine(p domain.Product, count int) (domain.Product, error) {
	if count < 1 || count > p.Volumes {
		return domain.Product{}, fmt.Errorf("%w: %d volumes of %d", ErrVolumeOutOfRange, count, p.Volumes)
	}

	snap := p
	snap.ID = fmt.Sprintf("%s-vols-1-%d", p.ID, count)
	snap.Title = fmt.Sprintf("%s - Volumes 1-%d", p.Title, count)
	snap.Price = pricing.RangePrice(p.Price, count)
	snap.OriginalPrice = pricing.RangePrice(p.OriginalPrice, count)
	snap.Volumes = 1
	return snap, nil
}
