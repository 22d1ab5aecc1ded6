package transport

import (
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
)

type ProductView struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description *string `json:"description"`
}

// ProductListItem is the catalog listing shape; it has no "updated" key.
type ProductListItem struct {
	ProductView
	Created time.Time `json:"created"`
}

type UpdatedProductView struct {
	ProductView
	Updated *time.Time `json:"updated"`
}

type CartProduct struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description *string `json:"description"`
}

type CartEntry struct {
	CartItemID uint        `json:"cart_item_id"`
	Product    CartProduct `json:"product"`
}

func NewProductView(p *models.Product) *ProductView {
	if p == nil {
		return nil
	}
	return &ProductView{ID: p.ID, Name: p.Name, Price: p.Price, Description: p.Description}
}

func NewProductList(items []models.Product) []ProductListItem {
	out := make([]ProductListItem, 0, len(items))
	for i := range items {
		out = append(out, ProductListItem{
			ProductView: *NewProductView(&items[i]),
			Created:     items[i].Created,
		})
	}
	return out
}

func NewUpdatedProductView(p *models.Product) UpdatedProductView {
	return UpdatedProductView{ProductView: *NewProductView(p), Updated: p.Updated}
}

func NewCartEntry(itemID uint, p models.Product) CartEntry {
	return CartEntry{
		CartItemID: itemID,
		Product:    CartProduct{Name: p.Name, Price: p.Price, Description: p.Description},
	}
}

func NewProductViews(items []models.Product) []ProductView {
	out := make([]ProductView, 0, len(items))
	for i := range items {
		out = append(out, *NewProductView(&items[i]))
	}
	return out
}
