package exifdata

// NormalizeCoordinate converts a raw coordinate value as read from metadata
// into decimal degrees. Encoders store coordinates either as a single value
// (already decimal degrees) or as a degrees/minutes/seconds triple. Any other
// shape is unparseable and reported as absence, not an error. The sign of the
// input is taken as given; hemisphere reference correction is the caller's
// job since it needs the separate reference tag.
func NormalizeCoordinate(components []float64) (float64, bool) {
	switch len(components) {
	case 1:
		return components[0], true
	case 3:
		return components[0] + components[1]/60 + components[2]/3600, true
	default:
		return 0, false
	}
}

// ApplyHemisphere corrects the sign of a decimal-degree coordinate using the
// hemisphere reference tag ("N", "S", "E" or "W"). Most encoders store
// unsigned coordinate values with the hemisphere in a separate tag, so a
// positive value with an "S" or "W" reference is really negative. Values that
// already carry the right sign are left alone. An empty or unknown reference
// leaves the value unchanged.
func ApplyHemisphere(value float64, ref string) float64 {
	switch ref {
	case "S", "W":
		if value > 0 {
			return -value
		}
	case "N", "E":
		if value < 0 {
			return -value
		}
	}
	return value
}
