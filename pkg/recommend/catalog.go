package recommend

// Activity is a catalog entry.
type Activity struct {
	Title         string
	Description   string
	TimeOfDay     string
	EstimatedCost string
	ImageURL      string
}

// Category groups activities under an activity type from profile.ActivityTypes.
type Category struct {
	Type       string
	Activities []Activity
}

const imageBase = "https://images.unsplash.com/"

func image(id string) string {
	return imageBase + id + "?auto=format&fit=crop&q=80"
}

// DefaultCatalog is the built-in activity catalog.
var DefaultCatalog = []Category{
	{
		Type: "Outdoor Adventures",
		Activities: []Activity{
			{
				Title:         "Sunrise Hiking Adventure",
				Description:   "Start your day with an invigorating hike while watching the sunrise together.",
				TimeOfDay:     "Morning",
				EstimatedCost: "$0-20",
				ImageURL:      image("photo-1551632811-561732d1e306"),
			},
			{
				Title:         "Scenic Bike Ride",
				Description:   "Explore local bike trails and scenic routes together.",
				TimeOfDay:     "Morning/Afternoon",
				EstimatedCost: "$20-40",
				ImageURL:      image("photo-1541625602330-2277a4c46182"),
			},
		},
	},
	{
		Type: "Cultural Events",
		Activities: []Activity{
			{
				Title:         "Local Art Gallery Tour",
				Description:   "Explore contemporary art exhibitions and discuss your interpretations.",
				TimeOfDay:     "Afternoon",
				EstimatedCost: "$0-30",
				ImageURL:      image("photo-1577720643272-265f09367456"),
			},
			{
				Title:         "Live Music Evening",
				Description:   "Enjoy live performances at a cozy venue.",
				TimeOfDay:     "Evening",
				EstimatedCost: "$40-80",
				ImageURL:      image("photo-1470225620780-dba8ba36b745"),
			},
		},
	},
	{
		Type: "Food & Dining",
		Activities: []Activity{
			{
				Title:         "Cooking Class for Two",
				Description:   "Learn to cook a new cuisine together with expert guidance.",
				TimeOfDay:     "Afternoon/Evening",
				EstimatedCost: "$80-150",
				ImageURL:      image("photo-1507048331197-7d4ac70811cf"),
			},
			{
				Title:         "Food Truck Festival",
				Description:   "Sample various cuisines from local food trucks.",
				TimeOfDay:     "Afternoon",
				EstimatedCost: "$30-60",
				ImageURL:      image("photo-1565123409695-7b5ef63a2efb"),
			},
		},
	},
	{
		Type: "Relaxation & Wellness",
		Activities: []Activity{
			{
				Title:         "Couples Spa Day",
				Description:   "Unwind together with massages and wellness treatments.",
				TimeOfDay:     "Morning/Afternoon",
				EstimatedCost: "$150-300",
				ImageURL:      image("photo-1544161515-4ab6ce6db874"),
			},
			{
				Title:         "Sunset Beach Yoga",
				Description:   "Practice yoga together as the sun sets over the horizon.",
				TimeOfDay:     "Evening",
				EstimatedCost: "$20-40",
				ImageURL:      image("photo-1506126613408-eca07ce68773"),
			},
		},
	},
}

// fallback is returned when no catalog entry matches.
var fallback = []Recommendation{
	{
		Title:         "Sunrise Yoga in the Park",
		Description:   "Start your weekend with a rejuvenating couple's yoga session as the sun rises over the city skyline.",
		Type:          "Relaxation & Wellness",
		TimeOfDay:     "Morning",
		EstimatedCost: "$20-30",
		ImageURL:      image("photo-1506126613408-eca07ce68773"),
	},
	{
		Title:         "Local Cafe Exploration",
		Description:   "Discover hidden gems in your local coffee scene while enjoying freshly baked pastries.",
		Type:          "Food & Dining",
		TimeOfDay:     "Morning",
		EstimatedCost: "$30-50",
		ImageURL:      image("photo-1495474472287-4d71bcdd2085"),
	},
	{
		Title:         "Evening Nature Walk",
		Description:   "Take a peaceful stroll through scenic paths as the day winds down.",
		Type:          "Outdoor Adventures",
		TimeOfDay:     "Evening",
		EstimatedCost: "Free",
		ImageURL:      image("photo-1511649475669-e288648b2339"),
	},
}
