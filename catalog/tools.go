package catalog

// Tool names.
const (
	ToolSearch    = "search_cars"
	ToolCompare   = "compare_cars"
	ToolBook      = "book_appointment"
	ToolNegotiate = "negotiate_price"
)

func (c *Catalog) Name() string { return "catalog" }

func (c *Catalog) Tools() []Tool {
	return []Tool{
		{
			Name:        ToolSearch,
			Description: "Search the vehicle inventory. All filters are optional and case-insensitive.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"make":  map[string]any{"type": "string", "description": "Manufacturer, e.g. Toyota"},
					"model": map[string]any{"type": "string", "description": "Model name, e.g. Camry"},
					"type":  map[string]any{"type": "string", "description": "Body type: Sedan, SUV, Truck, Electric"},
				},
			},
		},
		{
			Name:        ToolCompare,
			Description: "Compare two vehicles side by side and get a verdict.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"car_ids": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Vehicle ids; the first two are compared",
					},
				},
				"required": []string{"car_ids"},
			},
		},
		{
			Name:        ToolBook,
			Description: "Book a test drive appointment.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"car_id":        map[string]any{"type": "string"},
					"customer_name": map[string]any{"type": "string"},
					"date":          map[string]any{"type": "string", "description": "Preferred date, e.g. 2025-06-01"},
					"email":         map[string]any{"type": "string"},
				},
				"required": []string{"car_id", "date"},
			},
		},
		{
			Name:        ToolNegotiate,
			Description: "Make a price offer on a vehicle. Returns acceptance or a counter-offer.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"car_id":      map[string]any{"type": "string"},
					"offer_price": map[string]any{"type": "number", "description": "Offer in US dollars"},
				},
				"required": []string{"car_id", "offer_price"},
			},
		},
	}
}

func (c *Catalog) Call(toolName string, args map[string]any) (any, error) {
	switch toolName {
	case ToolSearch:
		return c.Search(stringArg(args, "make"), stringArg(args, "model"), stringArg(args, "type")), nil
	case ToolCompare:
		return c.Compare(stringsArg(args, "car_ids")), nil
	case ToolBook:
		return c.Book(stringArg(args, "car_id"), stringArg(args, "customer_name"), stringArg(args, "date"), stringArg(args, "email"))
	case ToolNegotiate:
		return c.Negotiate(stringArg(args, "car_id"), numberArg(args, "offer_price"))
	default:
		return nil, &ErrUnknownTool{Provider: c.Name(), Tool: toolName}
	}
}
