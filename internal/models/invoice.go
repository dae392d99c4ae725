package models

// TaxDetails is the output of the tax calculator for one catalog item.
// Tax is a per-unit amount; aggregation sites multiply by quantity.
type TaxDetails struct {
	Categories []string           `json:"taxCategories"`
	Breakdown  map[string]float64 `json:"taxBreakdown"`
	Tax        float64            `json:"tax"`
}

// InvoiceLine is a cart line hydrated with its catalog entry and taxed.
// Never persisted; built fresh per invoice or order request.
type InvoiceLine struct {
	ItemID        string             `json:"itemId"`
	ItemType      ItemType           `json:"itemType"`
	Quantity      int                `json:"quantity"`
	Item          *CatalogItem       `json:"item"`
	Tax           float64            `json:"tax"`
	TaxCategories []string           `json:"taxCategories"`
	TaxBreakdown  map[string]float64 `json:"taxBreakdown"`
}

// Invoice is the priced and taxed projection of a cart.
type Invoice struct {
	Items              []InvoiceLine `json:"items"`
	TotalTax           float64       `json:"totalTax"`
	TotalAmount        float64       `json:"totalAmount"`
	TotalAmountWithTax float64       `json:"totalAmountWithTax"`
}
