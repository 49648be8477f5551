package model

import "time"

// MenuItem represents a row of the `menu_items` table. Items are never
// hard-deleted; taking one off the menu flips Available to false so
// historical order lines keep a valid reference.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – item name shown on the menu.
//  Description – free-form description.
//  Price       – current price; order lines snapshot it at order time.
//  Category    – menu section (e.g. "Pizza", "Drinks").
//  Image       – optional image URL.
//  Available   – whether the item can currently be ordered.
//  KitchenCode – kitchen affiliation that manages the item (empty = shared).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type MenuItem struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Image       string    `json:"image,omitempty"`
	Available   bool      `json:"available"`
	KitchenCode string    `json:"kitchenCode,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MenuCategory groups the items of one category for menu.list
// responses. The ID doubles as the category name.
type MenuCategory struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Items []*MenuItem `json:"items"`
}

// GroupByCategory builds the category view of a flat item list,
// preserving the order in which categories first appear.
func GroupByCategory(items []*MenuItem) []*MenuCategory {
	byName := make(map[string]*MenuCategory)
	out := make([]*MenuCategory, 0)
	for _, it := range items {
		cat, ok := byName[it.Category]
		if !ok {
			cat = &MenuCategory{ID: it.Category, Name: it.Category}
			byName[it.Category] = cat
			out = append(out, cat)
		}
		cat.Items = append(cat.Items, it)
	}
	return out
}
