package ledger

// DefaultIcon is shown for categories missing from the icon table.
const DefaultIcon = "📦"

// DefaultIcons maps category display names to icons.
var DefaultIcons = map[string]string{
	"Dining":         "🍽️",
	"Grocery":        "🛒",
	"Entertainment":  "🎬",
	"Transportation": "🚗",
	"Shopping":       "🛍️",
	"Bills":          "💰",
	"Healthcare":     "🏥",
	"Travel":         "✈️",
	"Other":          "📦",
	"Gas":            "⛽",
	"Coffee":         "☕",
	"Food":           "🍽️",
	"Restaurants":    "🍽️",
	"Auto":           "🚗",
	"Medical":        "🏥",
	"Utilities":      "💡",
	"Internet":       "🌐",
	"Phone":          "📱",
	"Subscription":   "📺",
	"Subscriptions":  "📺",
	"Kids":           "👶",
	"Luxury Retail":  "💎",
}

func iconFor(icons map[string]string, name string) string {
	if icon, ok := icons[name]; ok {
		return icon
	}
	return DefaultIcon
}
