package osrm

// routeResponse is the OSRM /route/v1 response envelope.
type routeResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message,omitempty"`
	Routes  []route `json:"routes"`
}

type route struct {
	Geometry geometry `json:"geometry"`
	Distance float64  `json:"distance"`
	Duration float64  `json:"duration"`
}

// geometry is a GeoJSON LineString: [lng, lat] pairs.
type geometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}
