package dto

// MenuItemRequest creates or updates one sellable product.
type MenuItemRequest struct {
	Category  string  `json:"category"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// MenuItemResponse is one product as exposed over transport.
type MenuItemResponse struct {
	ID        int64   `json:"id"`
	Category  string  `json:"category"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// MenuCategoryResponse groups available items for display.
type MenuCategoryResponse struct {
	Name  string             `json:"name"`
	Items []MenuItemResponse `json:"items"`
}
