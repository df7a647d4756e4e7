package suggestion

// DiscretionaryCategories are the "wants" the suggestions look at first.
var DiscretionaryCategories = []string{
	"Food & Dining", "Shopping", "Subscriptions", "Entertainment",
	"Personal Care", "Travel",
}

// NeedsCategories are essential expenses.
var NeedsCategories = []string{
	"Rent", "Groceries", "Utilities", "Transportation", "Healthcare",
	"Education", "Fuel",
}

const genericTip = "Review this spending category for savings opportunities."

var categoryTips = map[string][]string{
	"Food & Dining": {
		"Consider meal prepping on weekends to reduce takeout spending.",
		"Use food delivery coupons and loyalty programs.",
		"Set a weekly dining-out budget and track it.",
	},
	"Shopping": {
		"Use a 48-hour rule: wait before making non-essential purchases.",
		"Unsubscribe from marketing emails to reduce impulse buying.",
		"Compare prices across platforms before purchasing.",
	},
	"Subscriptions": {
		"Audit all active subscriptions and cancel unused ones.",
		"Share family plans with household members.",
		"Look for annual plans which are usually cheaper than monthly.",
	},
	"Transportation": {
		"Consider carpooling or public transport for regular commutes.",
		"Use ride-sharing during off-peak hours for lower fares.",
		"Batch errands to reduce the number of trips.",
	},
	"Groceries": {
		"Plan weekly meals and make a shopping list before buying.",
		"Buy in bulk for non-perishable items.",
		"Use cashback apps and loyalty cards.",
	},
	"Fuel": {
		"Maintain proper tire pressure to improve fuel efficiency.",
		"Consider carpooling for daily commutes.",
		"Use fuel reward programs.",
	},
	"Entertainment": {
		"Look for free events and activities in your city.",
		"Use matinee show timings for cheaper movie tickets.",
		"Set a monthly entertainment budget.",
	},
	"Utilities": {
		"Switch to LED lighting to reduce electricity bills.",
		"Use energy-efficient appliances.",
		"Turn off standby devices and unplug chargers.",
	},
}

// Tips returns the saving tips for a category, if any.
func Tips(category string) []string {
	return categoryTips[category]
}

func firstTip(category string) string {
	if tips := categoryTips[category]; len(tips) > 0 {
		return tips[0]
	}
	return genericTip
}
