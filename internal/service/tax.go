package service

import "github.com/shopsphere/shopsphere-backend/internal/models"

// taxTier is one price-range-triggered category on top of the flat base.
// Upper of 0 means unbounded.
type taxTier struct {
	category string
	lower    float64
	upper    float64
	rate     float64
}

// taxSchedule fixes the base category plus the tiered surcharges for one
// catalog kind. Schedules are static configuration, not state.
type taxSchedule struct {
	baseCategory string
	baseAmount   float64
	tiers        []taxTier
}

var productTaxSchedule = taxSchedule{
	baseCategory: "PC",
	baseAmount:   200,
	tiers: []taxTier{
		{category: "PA", lower: 1000, upper: 5000, rate: 0.12},
		{category: "PB", lower: 5000, rate: 0.18},
	},
}

var serviceTaxSchedule = taxSchedule{
	baseCategory: "SC",
	baseAmount:   100,
	tiers: []taxTier{
		{category: "PA", lower: 1000, upper: 8000, rate: 0.10},
		{category: "PB", lower: 8000, rate: 0.15},
	},
}

// TaxCalculator maps a priced catalog item to its tax categories, per-category
// breakdown, and per-unit total. Pure; callers multiply by quantity when
// aggregating.
type TaxCalculator struct {
	schedules map[models.ItemType]taxSchedule
}

func NewTaxCalculator() *TaxCalculator {
	return &TaxCalculator{
		schedules: map[models.ItemType]taxSchedule{
			models.ItemTypeProduct: productTaxSchedule,
			models.ItemTypeService: serviceTaxSchedule,
		},
	}
}

// Calculate returns the tax details for one unit of the given kind at the
// given price. The base category always applies and is listed first.
func (c *TaxCalculator) Calculate(kind models.ItemType, price float64) models.TaxDetails {
	schedule := c.schedules[kind]

	details := models.TaxDetails{
		Categories: []string{schedule.baseCategory},
		Breakdown:  map[string]float64{schedule.baseCategory: schedule.baseAmount},
		Tax:        schedule.baseAmount,
	}

	for _, tier := range schedule.tiers {
		if price <= tier.lower {
			continue
		}
		if tier.upper > 0 && price > tier.upper {
			continue
		}
		amount := price * tier.rate
		details.Categories = append(details.Categories, tier.category)
		details.Breakdown[tier.category] = amount
		details.Tax += amount
	}

	return details
}
