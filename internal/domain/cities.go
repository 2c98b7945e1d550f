package domain

import "math"

// City is a named entry in the coordinate resolution table.
type City struct {
	Name  string
	Coord Coordinates
}

// cityTable lists the metropolitan areas coordinate-only requests resolve
// against. Mumbai is first: it doubles as the default when no coordinates
// are available at all.
var cityTable = []City{
	{"Mumbai, Maharashtra", Coordinates{19.0760, 72.8777}},
	{"New Delhi", Coordinates{28.7041, 77.1025}},
	{"Bangalore, Karnataka", Coordinates{12.9716, 77.5946}},
	{"Chennai, Tamil Nadu", Coordinates{13.0827, 80.2707}},
	{"Kolkata, West Bengal", Coordinates{22.5726, 88.3639}},
	{"Hyderabad, Telangana", Coordinates{17.3850, 78.4867}},
	{"Pune, Maharashtra", Coordinates{18.5204, 73.8567}},
	{"Ahmedabad, Gujarat", Coordinates{23.0225, 72.5714}},
	{"Jaipur, Rajasthan", Coordinates{26.9124, 75.7873}},
	{"Nagpur, Maharashtra", Coordinates{21.1458, 79.0882}},
	{"Goa", Coordinates{15.2993, 74.1240}},
	{"Coimbatore, Tamil Nadu", Coordinates{11.0168, 76.9558}},
}

// urbanCenters are the five largest metros used for area-type classification.
var urbanCenters = []Coordinates{
	{19.0760, 72.8777}, // Mumbai
	{28.7041, 77.1025}, // Delhi
	{12.9716, 77.5946}, // Bangalore
	{13.0827, 80.2707}, // Chennai
	{22.5726, 88.3639}, // Kolkata
}

// DefaultCity returns the fallback resolution target (Mumbai).
func DefaultCity() City {
	return cityTable[0]
}

// Metros returns the major metropolitan areas used for IP-based resolution.
func Metros() []City {
	return cityTable[:6]
}

// NearestCity resolves a coordinate pair to the closest table entry by planar
// distance. At table scale (hundreds of km between entries) the planar
// approximation is sufficient.
func NearestCity(c Coordinates) City {
	nearest := cityTable[0]
	minDist := math.Inf(1)
	for _, city := range cityTable {
		d := planarDistance(c, city.Coord)
		if d < minDist {
			minDist = d
			nearest = city
		}
	}
	return nearest
}

// ClassifyAreaType derives the area type from the distance to the nearest
// major urban center: <0.5 degrees Urban, <1.0 degrees Suburban, else Rural.
// First center within range wins, in table order.
func ClassifyAreaType(c Coordinates) string {
	for _, center := range urbanCenters {
		d := planarDistance(c, center)
		if d < 0.5 {
			return "Urban"
		}
		if d < 1.0 {
			return "Suburban"
		}
	}
	return "Rural"
}

func planarDistance(a, b Coordinates) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lon-b.Lon)
}
