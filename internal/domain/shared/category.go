package shared

// Category classifies records for budgeting and icon selection
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryEntertainment Category = "Entertainment"
	CategoryShopping      Category = "Shopping"
	CategoryUtilities     Category = "Utilities"
	CategoryHealthcare    Category = "Healthcare"
	CategoryIncome        Category = "Income"
	CategoryTransfer      Category = "Transfer"
	CategoryBills         Category = "Bills"
	CategoryRequest       Category = "Request"
)

// Categories lists every known category in display order
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryShopping,
	CategoryUtilities,
	CategoryHealthcare,
	CategoryIncome,
	CategoryTransfer,
	CategoryBills,
	CategoryRequest,
}

// CategoryStyle is the presentation hint clients use to render a category
type CategoryStyle struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var defaultCategoryStyle = CategoryStyle{Icon: "circle", Color: "#6b7280"}

var categoryStyles = map[Category]CategoryStyle{
	CategoryFood:          {Icon: "utensils", Color: "#ef4444"},
	CategoryTransport:     {Icon: "car", Color: "#f97316"},
	CategoryEntertainment: {Icon: "film", Color: "#eab308"},
	CategoryShopping:      {Icon: "shopping-bag", Color: "#22c55e"},
	CategoryUtilities:     {Icon: "zap", Color: "#3b82f6"},
	CategoryHealthcare:    {Icon: "heart-pulse", Color: "#8b5cf6"},
	CategoryIncome:        {Icon: "trending-up", Color: "#16a34a"},
	CategoryTransfer:      {Icon: "send", Color: "#0ea5e9"},
	CategoryBills:         {Icon: "receipt", Color: "#a855f7"},
	CategoryRequest:       {Icon: "download", Color: "#14b8a6"},
}

// Style returns the presentation hint for the category, falling back to a neutral style
func (c Category) Style() CategoryStyle {
	if style, ok := categoryStyles[c]; ok {
		return style
	}
	return defaultCategoryStyle
}

// Valid reports whether c is one of the enumerated categories
func (c Category) Valid() bool {
	_, ok := categoryStyles[c]
	return ok
}

// DefaultCategory returns the category assigned to a record kind when none is given
func DefaultCategory(kind RecordKind) Category {
	switch kind {
	case RecordKindMoneyRequest:
		return CategoryRequest
	case RecordKindBillPayment:
		return CategoryBills
	default:
		return CategoryTransfer
	}
}
