// Package geofence provides coordinate extraction from heterogeneous location
// payloads and radius enforcement for clock-in validation.
package geofence

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultRadiusMeters is used when the facility address record carries a
// coordinate pair but no radius.
const DefaultRadiusMeters = 150

const earthRadiusMeters = 6371000

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FacilityGeofence is a circular boundary around a facility's coordinates.
type FacilityGeofence struct {
	Coordinate   Coordinate `json:"coordinate"`
	RadiusMeters float64    `json:"radius_meters"`
}

// GeoReading is a device-supplied location captured at clock-in time.
type GeoReading struct {
	Coordinate     Coordinate `json:"coordinate"`
	AccuracyMeters *float64   `json:"accuracy_meters,omitempty"`
}

// Receipt is the verification result returned by a successful Enforce call.
type Receipt struct {
	DistanceMeters      float64 `json:"distance_meters"`
	AllowedRadiusMeters float64 `json:"allowed_radius_meters"`
}

// OutsideGeofenceError reports a reading beyond the allowed radius.
type OutsideGeofenceError struct {
	DistanceMeters      float64
	AllowedRadiusMeters float64
}

func (e *OutsideGeofenceError) Error() string {
	return fmt.Sprintf("reading is %.0fm from the facility, outside the allowed %.0fm radius",
		e.DistanceMeters, e.AllowedRadiusMeters)
}

var (
	latitudeKeys  = []string{"latitude", "lat"}
	longitudeKeys = []string{"longitude", "lng"}
	radiusKeys    = []string{"radius_meters", "radiusMeters", "radius"}
	accuracyKeys  = []string{"accuracy_meters", "accuracyMeters", "accuracy"}

	// Nested containers probed after the flat fields, in order. The address
	// record format evolved over time so both shapes remain in the wild.
	nestedKeys = []string{"location", "coordinates"}
)

// ResolveFacilityGeofence extracts a geofence from a facility address payload.
// Returns nil when no coordinate pair is found anywhere in the precedence
// chain; that is not an error, it means the facility has no geofence
// configured.
func ResolveFacilityGeofence(payload []byte) *FacilityGeofence {
	coord := resolveCoordinate(payload)
	if coord == nil {
		return nil
	}

	radius := float64(DefaultRadiusMeters)
	if value, ok := numericField(gjson.ParseBytes(payload), radiusKeys...); ok && value > 0 {
		radius = value
	}

	return &FacilityGeofence{Coordinate: *coord, RadiusMeters: radius}
}

// ResolveDeviceReading extracts a reading from a device location payload.
// Returns nil when latitude or longitude cannot be resolved.
func ResolveDeviceReading(payload []byte) *GeoReading {
	coord := resolveCoordinate(payload)
	if coord == nil {
		return nil
	}

	reading := &GeoReading{Coordinate: *coord}
	if value, ok := numericField(gjson.ParseBytes(payload), accuracyKeys...); ok {
		reading.AccuracyMeters = &value
	}
	return reading
}

// resolveCoordinate probes the payload for a latitude/longitude pair: flat
// fields first, then each nested container. Both halves of the pair must
// resolve at the same level; the first complete pair wins.
func resolveCoordinate(payload []byte) *Coordinate {
	if len(payload) == 0 {
		return nil
	}
	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return nil
	}

	if coord := coordinateAt(root); coord != nil {
		return coord
	}
	for _, key := range nestedKeys {
		nested := root.Get(key)
		if !nested.IsObject() {
			continue
		}
		if coord := coordinateAt(nested); coord != nil {
			return coord
		}
	}
	return nil
}

func coordinateAt(obj gjson.Result) *Coordinate {
	lat, latOK := numericField(obj, latitudeKeys...)
	lng, lngOK := numericField(obj, longitudeKeys...)
	if !latOK || !lngOK {
		return nil
	}
	return &Coordinate{Latitude: lat, Longitude: lng}
}

// numericField returns the first key whose value is a number or a numeric
// string. Any other type is treated as absent.
func numericField(obj gjson.Result, keys ...string) (float64, bool) {
	for _, key := range keys {
		field := obj.Get(key)
		switch field.Type {
		case gjson.Number:
			return field.Num, true
		case gjson.String:
			if value, err := strconv.ParseFloat(strings.TrimSpace(field.Str), 64); err == nil {
				return value, true
			}
		}
	}
	return 0, false
}

// DistanceMeters computes the haversine great-circle distance between two
// coordinates, rounded to the nearest integer meter.
func DistanceMeters(a, b Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(earthRadiusMeters * c)
}

// Enforce computes the distance between the reading and the geofence center
// and fails with OutsideGeofenceError when it exceeds the allowed radius.
// On success the measured distance and allowed radius are returned as a
// verification receipt.
func Enforce(reading GeoReading, fence FacilityGeofence) (Receipt, error) {
	distance := DistanceMeters(reading.Coordinate, fence.Coordinate)
	receipt := Receipt{DistanceMeters: distance, AllowedRadiusMeters: fence.RadiusMeters}
	if distance > fence.RadiusMeters {
		return receipt, &OutsideGeofenceError{
			DistanceMeters:      distance,
			AllowedRadiusMeters: fence.RadiusMeters,
		}
	}
	return receipt, nil
}
