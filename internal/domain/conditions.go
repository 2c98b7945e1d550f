package domain

import (
	"strings"
	"time"
)

// DefaultConditions builds driving conditions for coordinate-only requests,
// inferring time-of-day, traffic, lighting, and seasonal weather from the
// request time. Month-based weather follows the Indian monsoon calendar
// (June-September).
func DefaultConditions(at time.Time, areaType string) Conditions {
	hour := at.Hour()

	var timeOfDay, trafficVolume string
	switch {
	case hour >= 5 && hour < 12:
		timeOfDay = "Morning"
		trafficVolume = "Medium"
	case hour >= 12 && hour < 17:
		timeOfDay = "Afternoon"
		trafficVolume = "High"
	case hour >= 17 && hour < 21:
		timeOfDay = "Evening"
		trafficVolume = "High"
	default:
		timeOfDay = "Night"
		trafficVolume = "Low"
	}

	weather, roadSurface, visibility := "Clear", "Dry", "high"
	switch at.Month() {
	case time.June, time.July, time.August, time.September:
		weather, roadSurface, visibility = "Rainy", "Wet", "medium"
	}

	lightCondition := "Night_with_lights"
	if hour >= 6 && hour <= 18 {
		lightCondition = "Daylight"
	}

	if areaType == "" {
		areaType = "Urban"
	}

	return Conditions{
		VehicleType:     "Car",
		DriverAge:       32,
		Experience:      8,
		LicenseValid:    "yes",
		Seatbelt:        "yes",
		Weather:         weather,
		RoadSurface:     roadSurface,
		Visibility:      visibility,
		LightCondition:  lightCondition,
		RoadType:        "City_Road",
		RoadDesign:      "Straight",
		TrafficVolume:   trafficVolume,
		SpeedLimit:      60,
		CurrentSpeed:    55,
		TimeOfDay:       timeOfDay,
		IsWeekend:       isWeekend(at),
		AreaType:        areaType,
		Overtaking:      "no",
		Alcohol:         "no",
		PhoneUsage:      "no",
		AccidentHistory: 2,
	}
}

// ComprehensiveDefaults returns the baseline conditions for the comprehensive
// prediction endpoint; form fields present in the request override these.
func ComprehensiveDefaults() Conditions {
	return Conditions{
		VehicleType:     "Car",
		DriverAge:       30,
		Experience:      5,
		LicenseValid:    "yes",
		Seatbelt:        "yes",
		Weather:         "Clear",
		RoadSurface:     "Dry",
		Visibility:      "high",
		LightCondition:  "Daylight",
		RoadType:        "City_Road",
		RoadDesign:      "Straight",
		TrafficVolume:   "Medium",
		SpeedLimit:      60,
		CurrentSpeed:    50,
		TimeOfDay:       "Afternoon",
		IsWeekend:       false,
		AreaType:        "Urban",
		Overtaking:      "no",
		Alcohol:         "no",
		PhoneUsage:      "no",
		AccidentHistory: 0,
	}
}

func isWeekend(at time.Time) bool {
	wd := at.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WeatherInfo describes current environmental conditions for a location.
type WeatherInfo struct {
	Weather        string
	RoadSurface    string
	Visibility     string
	LightCondition string
	Temperature    int // Celsius
	Humidity       int // percent
}

// WeatherAt infers environmental conditions for a location at a point in
// time: monsoon rain June-September, early-morning fog in winter, and
// visibility degraded outside daylight hours.
func WeatherAt(at time.Time, location string) WeatherInfo {
	hour := at.Hour()

	var info WeatherInfo
	switch at.Month() {
	case time.June, time.July, time.August, time.September:
		info = WeatherInfo{Weather: "Rainy", RoadSurface: "Wet", Visibility: "medium", Humidity: 85}
	case time.December, time.January, time.February:
		info = WeatherInfo{Weather: "Clear", RoadSurface: "Dry", Visibility: "high", Humidity: 55}
		if hour >= 5 && hour <= 8 {
			info.Weather = "Foggy"
			info.Visibility = "low"
		}
	default:
		info = WeatherInfo{Weather: "Clear", RoadSurface: "Dry", Visibility: "high", Humidity: 65}
	}

	visibilityFactor := 1.0
	switch {
	case hour >= 6 && hour <= 18:
		info.LightCondition = "Daylight"
	case hour == 5 || hour == 19:
		info.LightCondition = "Twilight"
		visibilityFactor = 0.8
	default:
		info.LightCondition = "Night_with_lights"
		visibilityFactor = 0.6
	}
	if info.Visibility == "high" && visibilityFactor < 1.0 {
		if visibilityFactor > 0.7 {
			info.Visibility = "medium"
		} else {
			info.Visibility = "low"
		}
	}

	temp := 28
	if strings.Contains(strings.ToLower(location), "mumbai") {
		temp = 30
	}
	switch at.Month() {
	case time.December, time.January, time.February:
		temp -= 5
	}
	info.Temperature = temp

	return info
}
