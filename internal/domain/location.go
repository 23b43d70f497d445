package domain

// Location is a delivery location. It comes in two shapes: a structured
// saved address fetched from the ordering service (Raw carries the full
// payload including coordinates), or a bare place name extracted from
// conversation text. Tools accept either.
type Location struct {
	Name string         `json:"name"`
	Raw  map[string]any `json:"raw,omitempty"`
}

// FromName builds a bare-name location.
func FromName(city string) Location {
	return Location{Name: city}
}

// FromAddress builds a location from a saved-address payload. The display
// name is taken from short_name, falling back to name.
func FromAddress(addr map[string]any) Location {
	name, _ := addr["short_name"].(string)
	if name == "" {
		name, _ = addr["name"].(string)
	}
	return Location{Name: name, Raw: addr}
}

// Argument returns the shape to inject into tool arguments: the full
// address payload when available, else {"name": city}.
func (l Location) Argument() map[string]any {
	if l.Raw != nil {
		return l.Raw
	}
	return map[string]any{"name": l.Name}
}
