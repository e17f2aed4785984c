package domain

import "math"

const earthRadiusKm = 6371.0

// GeoPoint est une coordonnée en degrés décimaux.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// DistanceKm calcule la distance orthodromique (haversine, Terre sphérique).
// Aucune validation des bornes : des valeurs hors plage donnent un résultat numérique quelconque.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Distance entre deux points ; nil si l'un des deux est inconnu.
func Distance(from, to *GeoPoint) *float64 {
	if from == nil || to == nil {
		return nil
	}
	d := DistanceKm(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
	return &d
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180)
}
