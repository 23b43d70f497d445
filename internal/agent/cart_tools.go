package agent

import (
	"fmt"
	"strings"

	"github.com/Vatsa10/Zomatooo/internal/domain"
	"github.com/Vatsa10/Zomatooo/internal/llm"
)

// Local cart tools. These are declared to the model alongside the
// remote catalog but execute against session state, never the wire.
const (
	ToolAddToCart = "add_to_cart"
	ToolViewCart  = "view_cart"
	ToolClearCart = "clear_cart"
)

func isCartTool(name string) bool {
	switch name {
	case ToolAddToCart, ToolViewCart, ToolClearCart:
		return true
	}
	return false
}

// cartDeclarations describes the cart tools in the model's schema
// convention (already adapted, no conversion pass needed).
func cartDeclarations() []llm.FunctionDeclaration {
	return []llm.FunctionDeclaration{
		{
			Name:        ToolAddToCart,
			Description: "Add a menu item to the user's cart. The cart holds items from one restaurant at a time.",
			Parameters: map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"restaurant_id":   map[string]any{"type": "STRING", "description": "Restaurant identifier from search results"},
					"restaurant_name": map[string]any{"type": "STRING", "description": "Restaurant display name"},
					"item_id":         map[string]any{"type": "STRING", "description": "Menu item identifier"},
					"item_name":       map[string]any{"type": "STRING", "description": "Menu item display name"},
					"quantity":        map[string]any{"type": "INTEGER", "description": "How many to add, default 1"},
					"price":           map[string]any{"type": "NUMBER", "description": "Unit price in rupees"},
				},
				"required": []any{"restaurant_id", "restaurant_name", "item_id", "item_name"},
			},
		},
		{
			Name:        ToolViewCart,
			Description: "Show the current cart contents and total.",
			Parameters:  map[string]any{"type": "OBJECT", "properties": map[string]any{}},
		},
		{
			Name:        ToolClearCart,
			Description: "Empty the cart and release the restaurant lock.",
			Parameters:  map[string]any{"type": "OBJECT", "properties": map[string]any{}},
		},
	}
}

// executeCartTool runs a local cart tool against the session. A
// rejected add (second restaurant) comes back as a failed outcome with
// the rejection reason; the cart is left untouched.
func executeCartTool(sess *domain.Session, name string, args map[string]any) ToolOutcome {
	switch name {
	case ToolAddToCart:
		item := domain.CartItem{
			ItemID:   stringArg(args, "item_id"),
			Name:     stringArg(args, "item_name"),
			Quantity: intArg(args, "quantity"),
			Price:    floatArg(args, "price"),
		}
		status, err := sess.Cart.Add(stringArg(args, "restaurant_id"), stringArg(args, "restaurant_name"), item)
		if err != nil {
			return ToolOutcome{Tool: name, Kind: OutcomeFailed, Text: err.Error()}
		}
		summary := sess.Cart.Summary()
		return ToolOutcome{
			Tool: name,
			Kind: OutcomeOK,
			Text: fmt.Sprintf("%s Cart: %d item(s) from %s, total ₹%.0f.", status, summary.ItemCount, summary.RestaurantName, summary.Total),
		}

	case ToolViewCart:
		return ToolOutcome{Tool: name, Kind: OutcomeOK, Text: formatCart(sess.Cart.Summary())}

	case ToolClearCart:
		sess.Cart.Clear()
		return ToolOutcome{Tool: name, Kind: OutcomeOK, Text: "Cart cleared."}
	}

	return ToolOutcome{Tool: name, Kind: OutcomeFailed, Text: "unknown cart tool: " + name}
}

// formatCart renders the cart for the model to relay to the user.
func formatCart(s domain.CartSummary) string {
	if s.ItemCount == 0 {
		return "The cart is empty."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cart from %s:\n", s.RestaurantName)
	for _, it := range s.Items {
		fmt.Fprintf(&b, "- %s x%d @ ₹%.0f\n", it.Name, it.Quantity, it.Price)
	}
	fmt.Fprintf(&b, "Total: ₹%.0f", s.Total)
	return b.String()
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func floatArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}
