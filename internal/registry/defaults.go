package registry

import "fjacquet/statement-categorizer/internal/models"

// defaultCategories is the built-in table. Order matters: on an MCC shared by
// two categories the earlier one wins. Keywords are lower case and avoid
// fragments that occur inside unrelated words.
var defaultCategories = []models.Category{
	{
		ID:   "advertising",
		Name: "Advertising",
		Keywords: []string{
			"advertising", "facebook ads", "facebk", "google ads", "meta ads",
			"linkedin ads", "yelp ads", "marketing", "vistaprint",
		},
		MCCCodes: []int{7311, 7333},
	},
	{
		ID:   "auto",
		Name: "Auto",
		Keywords: []string{
			"auto parts", "autozone", "napa auto", "canadian tire", "jiffy lube",
			"oil change", "mechanic", "midas", "pep boys", "tire shop", "dealership",
		},
		MCCCodes: []int{5511, 5521, 5531, 5532, 5533, 7531, 7534, 7535, 7538},
	},
	{
		ID:   "bank_service_charges",
		Name: "Bank service charges",
		Keywords: []string{
			"service charge", "monthly fee", "account fee", "plan fee",
			"wire fee", "nsf fee", "overdraft", "bank fee",
		},
	},
	{
		ID:   "business_cell_phone",
		Name: "Business Cell phone",
		Keywords: []string{
			"verizon", "at&t", "t-mobile", "sprint", "rogers", "bell mobility",
			"telus", "fido", "koodo", "wireless", "mobility",
		},
		MCCCodes: []int{4812, 4814},
	},
	{
		ID:       "car_wash",
		Name:     "Car wash",
		Keywords: []string{"car wash", "carwash", "auto spa", "auto wash"},
		MCCCodes: []int{7542},
	},
	{
		ID:   "charitable_donation",
		Name: "Charitable donation",
		Keywords: []string{
			"charity", "donation", "donate", "nonprofit", "foundation",
			"red cross", "unicef", "fundraiser", "canadahelps",
		},
		MCCCodes: []int{8398},
	},
	{
		ID:   "computer_exp",
		Name: "Computer exp",
		Keywords: []string{
			"apple.com", "microsoft", "adobe", "dropbox", "github", "aws.amazon",
			"amazon web services", "google cloud", "digitalocean", "openai",
			"best buy", "dell.com", "software",
		},
		MCCCodes: []int{5045, 5734, 7372},
	},
	{
		ID:   "equipment_rental",
		Name: "Equipment rental",
		Keywords: []string{
			"equipment rent", "united rentals", "sunbelt rentals", "tool rental",
			"rentals",
		},
		MCCCodes: []int{7394},
	},
	{
		ID:   "fees",
		Name: models.CategoryFees,
		Keywords: []string{
			"fees", "late fee", "atm fee", "annual fee", "foreign transaction",
			"penalty", "atm withdrawal",
		},
		MCCCodes: []int{6010, 6011, 6012},
	},
	{
		ID:   "gas",
		Name: "Gas",
		Keywords: []string{
			"shell", "chevron", "exxon", "petro-canada", "petro canada",
			"exxonmobil", "sunoco", "valero", "gas station", "fuel", "petrol",
			"conoco", "citgo", "speedway", "wawa", "sheetz", "husky", "ultramar",
		},
		MCCCodes: []int{5541, 5542, 5983},
	},
	{
		ID:   "grocery",
		Name: "Grocery",
		Keywords: []string{
			"walmart", "kroger", "safeway", "whole foods", "trader joe", "aldi",
			"costco", "loblaws", "sobeys", "no frills", "publix", "wegmans",
			"food lion", "grocery", "supermarket", "market",
		},
		MCCCodes: []int{5411, 5422, 5441, 5451},
	},
	{
		ID:   "insurance",
		Name: "Insurance",
		Keywords: []string{
			"insurance", "geico", "state farm", "progressive", "allstate",
			"nationwide",
		},
		MCCCodes: []int{6300, 6381},
	},
	{
		ID:       "interest_expense",
		Name:     "Interest expense",
		Keywords: []string{"interest", "finance charge"},
	},
	{
		ID:   "internet",
		Name: "Internet",
		Keywords: []string{
			"internet", "comcast", "xfinity", "spectrum", "shaw cable", "cogeco",
			"videotron", "broadband", "fibre", "fiber",
		},
		MCCCodes: []int{4816},
	},
	{
		ID:   "meals",
		Name: "Meals & entertainment",
		Keywords: []string{
			"restaurant", "cafe", "bistro", "grill", "diner", "pizza", "burger",
			"mcdonald", "wendy's", "subway", "chipotle", "panera", "starbucks",
			"dunkin", "tim hortons", "coffee", "brewpub", "tavern", "eatery",
			"sushi", "taco bell", "doordash", "uber eats", "skipthedishes",
			"netflix", "cinema", "theatre", "theater", "concert",
		},
		MCCCodes: []int{5812, 5813, 5814, 7832},
	},
	{
		ID:   "office_utilities",
		Name: "Office utilities",
		Keywords: []string{
			"electric", "hydro", "water", "utility", "utilities", "power",
			"energy", "enbridge", "gas company", "sewer", "waste management",
		},
		MCCCodes: []int{4900},
	},
	{
		ID:       "parking",
		Name:     "Parking",
		Keywords: []string{"parking", "impark", "park n fly", "spothero", "toll road"},
		MCCCodes: []int{7523},
	},
	{
		ID:   "professional_services",
		Name: "Professional Services",
		Keywords: []string{
			"accountant", "accounting", "lawyer", "attorney", "consultant",
			"legal", "cpa", "bookkeeping", "advisor", "notary",
		},
		MCCCodes: []int{8111, 8931, 8999},
	},
	{
		ID:   "repairs_maintenance",
		Name: "Repairs/ maintenance",
		Keywords: []string{
			"repair", "maintenance", "plumbing", "plumber", "electrician",
			"hvac", "hardware", "home depot", "lowe's", "janitorial",
			"cleaning",
		},
		MCCCodes: []int{1520, 1711, 1731, 1799, 5200, 5251, 7349},
	},
	{
		ID:   "shopping",
		Name: models.CategoryShopping,
		Keywords: []string{
			"amazon", "ebay", "etsy", "target", "retail", "clothing", "apparel",
			"ikea", "staples", "winners", "marshalls", "shopify", "dollarama",
			"department store",
		},
		MCCCodes: []int{5309, 5310, 5311, 5331, 5399, 5611, 5621, 5651, 5691, 5699, 5943},
	},
	{
		ID:       "spotify",
		Name:     "Spotify",
		Keywords: []string{"spotify"},
	},
	{
		ID:   "travel",
		Name: "Travel",
		Keywords: []string{
			"hotel", "motel", "airbnb", "booking.com", "expedia", "air canada",
			"westjet", "delta air", "united airlines", "american airlines",
			"airline", "airport", "flight", "uber", "lyft", "taxi", "via rail",
			"amtrak", "marriott", "hilton", "hyatt",
		},
		MCCCodes: []int{3000, 3001, 4111, 4121, 4131, 4411, 4511, 4722, 4789, 7011, 7012},
	},
	{
		ID:   "income",
		Name: models.CategoryIncome,
	},
	{
		ID:   "uncategorized",
		Name: models.CategoryUncategorized,
	},
}
