package store

import (
	"fmt"
	"time"

	"ricemill/backend/internal/domain"
)

// SeedIntakes is the static truck registry loaded on first start.
func SeedIntakes() []domain.PaddyIntake {
	day := func(d int) time.Time { return time.Date(2024, time.November, d, 0, 0, 0, 0, time.UTC) }
	rows := []struct {
		date     time.Time
		vehicle  string
		slip     string
		chit     string
		center   string
		district string
		newBags  int
		oldBags  int
		quintals float64
		moisture float64
		point    domain.UnloadingPoint
	}{
		{day(4), "AP37TB4521", "S-1041", "C-2201", "Kovvur", "East Godavari", 420, 160, 232.0, 16.4, domain.UnloadingOldGodown},
		{day(4), "AP37TC1187", "S-1042", "C-2202", "Kovvur", "East Godavari", 380, 200, 231.6, 16.9, domain.UnloadingOldGodown},
		{day(5), "AP39U7710", "S-1043", "C-2203", "Nidadavole", "East Godavari", 600, 0, 240.0, 15.8, domain.UnloadingNewGodown},
		{day(6), "AP05TK3302", "S-1044", "C-2204", "Tanuku", "West Godavari", 300, 290, 236.2, 17.1, domain.UnloadingPlantShed},
		{day(6), "AP05TK9045", "S-1045", "C-2205", "Tanuku", "West Godavari", 510, 70, 232.4, 16.2, domain.UnloadingPlantShed},
		{day(7), "AP37TB4521", "S-1046", "C-2206", "Kovvur", "East Godavari", 450, 130, 233.1, 15.9, domain.UnloadingNewGodown},
		{day(8), "AP16TR6620", "S-1047", "C-2207", "Bhimavaram", "West Godavari", 580, 0, 229.8, 16.6, domain.UnloadingBatti},
		{day(9), "AP16TR1203", "S-1048", "C-2208", "Bhimavaram", "West Godavari", 250, 330, 231.9, 17.4, domain.UnloadingBatti},
		{day(11), "AP39U7710", "S-1049", "C-2209", "Nidadavole", "East Godavari", 400, 180, 234.5, 16.0, domain.UnloadingOldGodown},
		{day(12), "AP05TK3302", "S-1050", "C-2210", "Tanuku", "West Godavari", 560, 20, 238.3, 15.5, domain.UnloadingNewGodown},
		{day(13), "AP40TA8804", "S-1051", "C-2211", "Kovvur", "West Godavari", 320, 260, 230.7, 16.8, domain.UnloadingOther},
		{day(14), "AP16TR6620", "S-1052", "C-2212", "Bhimavaram", "West Godavari", 500, 80, 235.0, 16.1, domain.UnloadingPlantShed},
	}

	intakes := make([]domain.PaddyIntake, 0, len(rows))
	for i, row := range rows {
		intakes = append(intakes, domain.PaddyIntake{
			ID:             fmt.Sprintf("intake-%03d", i+1),
			SerialNo:       i + 1,
			Date:           row.date,
			VehicleNo:      row.vehicle,
			SlipNo:         row.slip,
			ChitNo:         row.chit,
			Center:         row.center,
			District:       row.district,
			NewBags:        row.newBags,
			OldBags:        row.oldBags,
			TotalBags:      row.newBags + row.oldBags,
			Quintals:       row.quintals,
			MoisturePct:    row.moisture,
			UnloadingPoint: row.point,
			CreatedAt:      row.date,
		})
	}
	return intakes
}
