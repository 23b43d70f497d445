package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/Vatsa10/Zomatooo/internal/domain"
)

// PromptConfig controls system prompt generation.
type PromptConfig struct {
	Location   *domain.Location
	PhoneBound bool
	CartLine   string // non-empty when the cart has items
}

// BuildSystemPrompt constructs the system instruction for the model.
// The ordering guidance keeps the model on the search → menu → cart →
// confirm rail; the context lines pin the session's resolved state.
func BuildSystemPrompt(cfg PromptConfig) string {
	var b strings.Builder

	b.WriteString("You are a Zomato food ordering assistant. Follow strictly:\n")
	b.WriteString("1. For searches: use get_restaurants_for_keyword with 'keyword' (e.g., 'pizza' or 'pizza from dominos') AND 'user_location'.\n")
	b.WriteString("2. If no results, the broader search runs automatically; summarize both outcomes for the user.\n")
	b.WriteString("3. After a search, call get_menu_items_listing(restaurant_id) to list items, then get_restaurant_menu_by_category for details.\n")
	b.WriteString("4. For the cart: use add_to_cart with restaurant_id, item details and quantity. Show the summary and total before checkout.\n")
	b.WriteString("5. The cart holds one restaurant at a time; if an add is rejected, tell the user to clear the cart first.\n")
	b.WriteString("6. Checkout requires a verified phone number; use bind_user_number then bind_user_number_verify_code with the OTP the user gives you.\n")
	b.WriteString("7. Confirm every step (address, items, total). Be engaging, concise.\n")

	b.WriteString(fmt.Sprintf("\nCurrent date: %s\n", time.Now().Format("2006-01-02")))

	if cfg.Location != nil {
		fmt.Fprintf(&b, "Delivery location: %s\n", cfg.Location.Name)
	} else {
		b.WriteString("No delivery location is set yet; ask the user for their city before searching.\n")
	}
	if cfg.PhoneBound {
		b.WriteString("The user's phone number is already verified.\n")
	}
	if cfg.CartLine != "" {
		b.WriteString(cfg.CartLine + "\n")
	}

	return b.String()
}
