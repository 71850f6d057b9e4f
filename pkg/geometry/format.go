package geometry

import "fmt"

// smallAreaLimit is the area in m² below which areas are shown in cm²
const smallAreaLimit = 0.01

// FormatLength formats a distance in meters; sub-meter values use centimeters
func FormatLength(meters float64) string {
	if meters < 1 {
		return fmt.Sprintf("%.1f cm", meters*100)
	}
	return fmt.Sprintf("%.2f m", meters)
}

// FormatArea formats an area in square meters; values below 0.01 m² use cm²
func FormatArea(area float64) string {
	if area < smallAreaLimit {
		return fmt.Sprintf("%.1f cm²", area*10000)
	}
	return fmt.Sprintf("%.2f m²", area)
}

// FormatInclination formats an angle in degrees
func FormatInclination(degrees float64) string {
	return fmt.Sprintf("%.1f°", degrees)
}

// FormatVector formats a 3D vector
func FormatVector(v Vector3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
