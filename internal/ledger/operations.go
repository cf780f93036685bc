package ledger

import (
	"math"

	"ricemill/backend/internal/domain"
)

func PackagingLevels(movements []domain.PackagingMovement) []domain.PackagingLevel {
	levels := make([]domain.PackagingLevel, len(domain.PackagingItems))
	index := make(map[domain.PackagingItem]int, len(domain.PackagingItems))
	for i, item := range domain.PackagingItems {
		levels[i].Item = item
		index[item] = i
	}
	for _, movement := range movements {
		if i, ok := index[movement.Item]; ok {
			levels[i].Quantity += movement.Quantity
		}
	}
	return levels
}

func packagingLevel(levels []domain.PackagingLevel, item domain.PackagingItem) float64 {
	for _, level := range levels {
		if level.Item == item {
			return level.Quantity
		}
	}
	return 0
}

// Bottleneck computes how many whole ACKs each input can still support and
// reports the smallest as the binding constraint. Ties go to the earlier
// constraint in rice, gunny, FRK, sticker order.
func Bottleneck(availablePaddy float64, packaging []domain.PackagingLevel) domain.BottleneckAnalysis {
	capacities := []domain.Capacity{
		capacity("rice", availablePaddy*domain.BlendedRiceYield, domain.QuintalsPerACK),
		capacity("gunny_bags", packagingLevel(packaging, domain.PackagingGunnyBags), domain.GunnyBagsPerACK),
		capacity("frk", packagingLevel(packaging, domain.PackagingFRKKg), domain.FRKKgPerACK),
		capacity("stickers", packagingLevel(packaging, domain.PackagingStickers), domain.StickersPerACK),
	}

	analysis := domain.BottleneckAnalysis{Capacities: capacities}
	for i, c := range capacities {
		if i == 0 || c.AcksPossible < analysis.AcksPossible {
			analysis.Binding = c.Constraint
			analysis.AcksPossible = c.AcksPossible
		}
	}
	return analysis
}

func capacity(name string, available float64, perACK float64) domain.Capacity {
	acks := 0.0
	if available > 0 {
		acks = math.Floor(available / perACK)
	}
	return domain.Capacity{
		Constraint:   name,
		Available:    available,
		PerACK:       perACK,
		AcksPossible: acks,
	}
}

func AckProgress(target int, batches []domain.RiceBatch, consignments []domain.Consignment) domain.AckDelivery {
	progress := domain.AckDelivery{Target: target}
	for _, batch := range batches {
		progress.Produced += batch.AckCount
		if batch.RiceType == domain.RiceRaw {
			progress.ProducedRaw += batch.AckCount
		} else {
			progress.ProducedBoiled += batch.AckCount
		}
	}
	for _, consignment := range consignments {
		progress.Delivered += consignment.AckCount
	}
	if target > 0 {
		progress.Remaining = max(target-progress.Delivered, 0)
		progress.ProgressPercent = math.Min(float64(progress.Delivered)/float64(target)*100, 100)
	}
	return progress
}
