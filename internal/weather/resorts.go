package weather

// SuggestedResorts are offered when a skier has not saved any locations yet.
var SuggestedResorts = []Location{
	{Slug: "whistler-blackcomb", Name: "Whistler Blackcomb", Latitude: 50.12, Longitude: -122.95, Timezone: "America/Vancouver", Label: "Whistler, BC, Canada"},
	{Slug: "vail", Name: "Vail", Latitude: 39.64, Longitude: -106.37, Timezone: "America/Denver", Label: "Vail, CO, USA"},
	{Slug: "holiday-valley", Name: "Holiday Valley", Latitude: 42.27, Longitude: -78.67, Timezone: "America/New_York", Label: "Ellicottville, NY, USA"},
	{Slug: "stowe", Name: "Stowe", Latitude: 44.53, Longitude: -72.78, Timezone: "America/New_York", Label: "Stowe, VT, USA"},
}
