package classification

import "github.com/Veraticus/finsight/internal/model"

// DefaultRules returns the built-in keyword rules, in priority order within
// each universe.
func DefaultRules() []Rule {
	expense := func(category string, keywords ...string) Rule {
		return Rule{Universe: model.KindExpense, Category: category, Keywords: keywords}
	}
	savings := func(category string, keywords ...string) Rule {
		return Rule{Universe: model.KindSavings, Category: category, Keywords: keywords}
	}
	income := func(category string, keywords ...string) Rule {
		return Rule{Universe: model.KindIncome, Category: category, Keywords: keywords}
	}

	return []Rule{
		expense("Food & Dining",
			"ZOMATO", "SWIGGY", "STARBUCKS", "HAVE A BREAK", "CAFE", "RESTAURANT",
			"DOMINOS", "PIZZA", "MCDONALD", "KFC", "DUNKIN", "BURGER"),
		expense("Groceries",
			"BLINKIT", "GROFERS", "SUPERMARKET", "BIGBASKET", "JIOMART",
			"DMART", "RELIANCE FRESH", "SPENCER", "MORE RETAIL"),
		expense("Transportation",
			"UBER", "OLA", "UBERRIDE", "TAXI", "METRO", "RAPIDO",
			"IRCTC", "RAILWAY", "REDBUS", "BUS TICKET"),
		expense("Shopping",
			"TANISHQ", "FASHNEAR", "MEESHO", "AMAZON", "PAYTM MALL",
			"FLIPKART", "MYNTRA", "AJIO", "NYKAA", "TATA CLIQ"),
		expense("Subscriptions",
			"APPLE SERVICES", "APPLE MEDIA SERVICES", "NETFLIX", "SPOTIFY", "PRIME",
			"HOTSTAR", "YOUTUBE PREMIUM", "JIOCINEMA", "DISNEY"),
		expense("Utilities",
			"CESC LIMITED", "ELECTRIC", "WATER", "UTILITY", "BILL",
			"BROADBAND", "WIFI", "INTERNET", "GAS BILL", "PHONE BILL"),
		expense("Fuel", "FUEL ST", "PETROL", "GAS STATION", "DIESEL", "IOCL", "BPCL", "HPCL"),
		expense("Healthcare",
			"HOSPITAL", "PHARMACY", "MEDICAL", "DOCTOR", "CLINIC",
			"APOLLO", "MEDPLUS", "1MG", "PHARMEASY", "NETMEDS"),
		expense("Education",
			"SCHOOL", "COLLEGE", "TUITION", "COURSE", "UDEMY",
			"COURSERA", "UNACADEMY", "BYJU"),
		expense("Rent", "RENT", "HOUSING", "PG CHARGES", "HOSTEL"),
		expense("Entertainment",
			"MOVIE", "BOOKMYSHOW", "PVR", "INOX", "GAMING", "STEAM", "PLAYSTATION"),
		expense("Travel",
			"MAKEMYTRIP", "GOIBIBO", "CLEARTRIP", "HOTEL", "AIRBNB",
			"OYO", "AIRLINE", "FLIGHT", "INDIGO", "AIRINDIA"),
		expense("Personal Care", "SALON", "SPA", "PARLOUR", "GROOMING", "URBANCLAP"),

		savings("Mutual Fund SIP", "INVESTNOWIP", "SIP", "MUTUAL FUND", "MF PURCHASE"),
		savings("Insurance", "BAJAJ ALLIANZ LIFE", "LIC", "INSURANCE", "HDFC LIFE", "ICICI PRUDENTIAL"),
		savings("Fixed Deposit", "FD", "FIXED DEPOSIT", "RD", "RECURRING DEPOSIT"),
		savings("Retirement", "EPF", "PPF", "NPS", "RETIREMENT", "PENSION"),
		savings("Stocks", "ZERODHA", "GROWW", "UPSTOX", "SHARE PURCHASE", "EQUITY"),
		savings("Gold", "GOLD", "SOVEREIGN GOLD BOND", "SGB", "DIGITAL GOLD"),

		income("Salary", "SALARY", "CONSULTANCY CHARGES", "A2AINT01", "PAYROLL", "HR DEPT", "WAGE"),
		income("Refund", "REV-UPI", "REFUND", "REVERSAL"),
		income("Interest", "INTEREST", "DIVIDEND", "INT PAID"),
		income("Transfer In", "NEFT", "IMPS", "UPI CREDIT", "CASHBACK", "REWARD", "RTGS"),
		income("Freelance", "FREELANCE", "CONSULTING", "CONTRACT"),
		income("Rental Income", "RENT RECEIVED", "TENANT", "LEASE"),
	}
}

// DefaultTaxonomy returns the built-in taxonomy.
func DefaultTaxonomy() *Taxonomy {
	t, err := NewTaxonomy(DefaultRules())
	if err != nil {
		panic("invalid built-in taxonomy: " + err.Error())
	}
	return t
}
