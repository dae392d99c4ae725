package models

// ItemType discriminates the two catalog kinds a cart line can reference.
type ItemType string

const (
	ItemTypeProduct ItemType = "PRODUCT"
	ItemTypeService ItemType = "SERVICE"
)

func (t ItemType) Valid() bool {
	return t == ItemTypeProduct || t == ItemTypeService
}

// DisplayName is the entity name used in not-found messages.
func (t ItemType) DisplayName() string {
	if t == ItemTypeService {
		return "Service"
	}
	return "Product"
}

// CartKey is the uniqueness key of a line within one cart.
type CartKey struct {
	ItemID   string
	ItemType ItemType
}

// CartLineItem is one entry in a user's cart. It has no identity of its own;
// it lives inside the owning user's cart snapshot.
type CartLineItem struct {
	ItemID   string   `json:"itemId"`
	ItemType ItemType `json:"itemType"`
	Quantity int      `json:"quantity"`
}

func (i CartLineItem) Key() CartKey {
	return CartKey{ItemID: i.ItemID, ItemType: i.ItemType}
}

// Cart is an ordered sequence of line items. Invariant: no two elements share
// a key after any successful mutation.
type Cart []CartLineItem

// IndexOf returns the position of the line with the given key, or -1.
func (c Cart) IndexOf(key CartKey) int {
	for i, item := range c {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

// Partition splits the cart's item ids by kind, preserving order.
func (c Cart) Partition() (productIDs, serviceIDs []string) {
	for _, item := range c {
		if item.ItemType == ItemTypeProduct {
			productIDs = append(productIDs, item.ItemID)
		} else {
			serviceIDs = append(serviceIDs, item.ItemID)
		}
	}
	return productIDs, serviceIDs
}

// CartItemRef identifies a line for removal; quantity is irrelevant there.
type CartItemRef struct {
	ItemID   string   `json:"itemId"`
	ItemType ItemType `json:"itemType"`
}

func (r CartItemRef) Key() CartKey {
	return CartKey{ItemID: r.ItemID, ItemType: r.ItemType}
}

// HydratedCartLine is a cart line joined with its catalog entry, returned by
// the cart read endpoint.
type HydratedCartLine struct {
	CartLineItem
	Item *CatalogItem `json:"item"`
}
