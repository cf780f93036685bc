// Package ledger holds the mill's accounting rules as pure functions over
// record slices. Nothing here touches storage or the clock.
package ledger

import (
	"fmt"
	"math"
	"strings"

	"ricemill/backend/internal/domain"
)

func OutturnRate(riceType domain.RiceType) (float64, error) {
	switch riceType {
	case domain.RiceBoiled:
		return domain.BoiledOutturnRate, nil
	case domain.RiceRaw:
		return domain.RawOutturnRate, nil
	default:
		return 0, domain.Invalid("unknown rice type %q", riceType)
	}
}

// BatchQuantities returns the rice produced and paddy consumed by ackCount ACKs.
func BatchQuantities(ackCount int, riceType domain.RiceType) (riceProduced float64, paddyUsed float64, err error) {
	if ackCount < 1 {
		return 0, 0, domain.Invalid("ack count must be at least 1")
	}
	rate, err := OutturnRate(riceType)
	if err != nil {
		return 0, 0, err
	}
	riceProduced = float64(ackCount) * domain.QuintalsPerACK
	return riceProduced, riceProduced / rate, nil
}

func AckLabel(ackCount int, riceType domain.RiceType) string {
	name := string(riceType)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("%d ACK %s", ackCount, name)
}

// CheckBatchEdit rejects quantity changes to a batch whose by-products are
// already recorded.
func CheckBatchEdit(current domain.RiceBatch, edited domain.RiceBatch, hasProduction bool) error {
	if !hasProduction {
		return nil
	}
	if edited.RiceType != current.RiceType || edited.AckCount != current.AckCount || edited.PaddyUsed != current.PaddyUsed {
		return fmt.Errorf("%w: rice batch %s already has by-product production; ack count and rice type cannot change", domain.ErrConflict, current.ID)
	}
	return nil
}

func PaddyAvailability(intakes []domain.PaddyIntake, batches []domain.RiceBatch) domain.PaddyAvailability {
	var total, used float64
	for _, intake := range intakes {
		total += intake.Quintals
	}
	for _, batch := range batches {
		used += batch.PaddyUsed
	}
	return domain.PaddyAvailability{
		TotalIntake: total,
		TotalUsed:   used,
		Available:   total - used,
	}
}

// CheckPaddy rejects a batch whose paddy requirement exceeds what is left.
func CheckPaddy(availability domain.PaddyAvailability, required float64) error {
	if required > availability.Available {
		return domain.NewStockShortfall("paddy", "qtl", math.Max(availability.Available, 0), required)
	}
	return nil
}

// ByProductYields expresses every category as a percentage of the batch's paddy.
func ByProductYields(quantities map[domain.ByProductCategory]float64, paddyUsed float64) map[domain.ByProductCategory]float64 {
	yields := make(map[domain.ByProductCategory]float64, len(quantities))
	for category, qty := range quantities {
		if paddyUsed <= 0 {
			yields[category] = 0
			continue
		}
		yields[category] = qty / paddyUsed * 100
	}
	return yields
}
