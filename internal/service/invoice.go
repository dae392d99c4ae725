package service

import (
	"context"

	"github.com/shopsphere/shopsphere-backend/internal/models"
)

// InvoiceService projects a cart into a priced and taxed view. The projection
// has no side effects; it backs both the invoice preview endpoint and the
// first stage of checkout.
type InvoiceService struct {
	catalog *CatalogService
	tax     *TaxCalculator
}

func NewInvoiceService(catalog *CatalogService, tax *TaxCalculator) *InvoiceService {
	return &InvoiceService{catalog: catalog, tax: tax}
}

// Project hydrates every cart line, taxes it per unit, and aggregates totals.
// Tax on each line is per unit; totals multiply by quantity.
func (s *InvoiceService) Project(ctx context.Context, cart models.Cart) (*models.Invoice, error) {
	resolved, err := s.catalog.ResolveCart(ctx, cart)
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{Items: make([]models.InvoiceLine, 0, len(cart))}

	for _, line := range cart {
		item, ok := resolved[line.Key()]
		if !ok {
			// Full resolution was checked above; an unresolved line here would
			// mean a duplicate-key cart, which mutations never produce.
			continue
		}

		details := s.tax.Calculate(line.ItemType, item.Price)

		invoice.Items = append(invoice.Items, models.InvoiceLine{
			ItemID:        line.ItemID,
			ItemType:      line.ItemType,
			Quantity:      line.Quantity,
			Item:          item,
			Tax:           details.Tax,
			TaxCategories: details.Categories,
			TaxBreakdown:  details.Breakdown,
		})

		qty := float64(line.Quantity)
		invoice.TotalTax += details.Tax * qty
		invoice.TotalAmount += item.Price * qty
	}

	invoice.TotalAmountWithTax = invoice.TotalAmount + invoice.TotalTax
	return invoice, nil
}
