package domain

import (
	"fmt"
	"time"
)

// CartItem is one line in a cart.
type CartItem struct {
	ItemID   string  `json:"itemId"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"` // unit price in rupees
}

// Cart holds items from at most one restaurant. Adding an item from a
// different restaurant while the cart is non-empty is rejected, never
// merged or overwritten.
type Cart struct {
	RestaurantID   string     `json:"restaurantId,omitempty"`
	RestaurantName string     `json:"restaurantName,omitempty"`
	Items          []CartItem `json:"items,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt,omitempty"`
}

// CartSummary is a point-in-time view of the cart for display.
type CartSummary struct {
	RestaurantName string     `json:"restaurantName,omitempty"`
	ItemCount      int        `json:"itemCount"`
	Total          float64    `json:"total"`
	Items          []CartItem `json:"items,omitempty"`
}

// ErrRestaurantMismatch is returned when an add would mix restaurants.
type ErrRestaurantMismatch struct {
	Have string
	Want string
}

func (e *ErrRestaurantMismatch) Error() string {
	return fmt.Sprintf("cart already holds items from restaurant %s; clear it before ordering from %s", e.Have, e.Want)
}

// Add puts an item from the given restaurant into the cart. If the same
// item is already present its quantity is increased. Returns a
// human-readable status line for the conversation.
func (c *Cart) Add(restaurantID, restaurantName string, item CartItem) (string, error) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	if c.RestaurantID != "" && c.RestaurantID != restaurantID {
		return "", &ErrRestaurantMismatch{Have: c.RestaurantName, Want: restaurantName}
	}

	if c.RestaurantID == "" {
		c.RestaurantID = restaurantID
		c.RestaurantName = restaurantName
	}

	for i := range c.Items {
		if c.Items[i].ItemID == item.ItemID {
			c.Items[i].Quantity += item.Quantity
			c.UpdatedAt = time.Now()
			return fmt.Sprintf("Updated %s to quantity %d.", c.Items[i].Name, c.Items[i].Quantity), nil
		}
	}

	c.Items = append(c.Items, item)
	c.UpdatedAt = time.Now()
	return fmt.Sprintf("Added %s x%d to your cart.", item.Name, item.Quantity), nil
}

// Summary computes the cart total and item count.
func (c *Cart) Summary() CartSummary {
	s := CartSummary{
		RestaurantName: c.RestaurantName,
		ItemCount:      len(c.Items),
		Items:          c.Items,
	}
	for _, it := range c.Items {
		s.Total += it.Price * float64(it.Quantity)
	}
	return s
}

// Clear empties the cart and releases the restaurant lock.
func (c *Cart) Clear() {
	c.RestaurantID = ""
	c.RestaurantName = ""
	c.Items = nil
	c.UpdatedAt = time.Now()
}

// Empty reports whether the cart holds no items.
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}
