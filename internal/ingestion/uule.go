package ingestion

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidCoordinates is returned when a latitude or longitude is outside
// its valid range.
var ErrInvalidCoordinates = errors.New("coordinates out of range")

// EncodeUULE builds the "uule" location parameter that pins a search to an
// exact point. The payload is the provider's v2 text format: a fixed
// role/producer/provenance header, a microsecond timestamp, the point in E7
// fixed-precision, and an unset radius, base64-encoded with the "a+" prefix.
func EncodeUULE(lat, lng float64, at time.Time) (string, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return "", fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidCoordinates, lat, lng)
	}

	payload := fmt.Sprintf(
		"role: 1\n"+
			"producer: 12\n"+
			"provenance: 6\n"+
			"timestamp: %d\n"+
			"latlng {\n"+
			"  latitude_e7: %d\n"+
			"  longitude_e7: %d\n"+
			"}\n"+
			"radius: -1\n",
		at.UnixMicro(),
		int64(math.Round(lat*1e7)),
		int64(math.Round(lng*1e7)),
	)

	return "a+" + base64.StdEncoding.EncodeToString([]byte(payload)), nil
}
