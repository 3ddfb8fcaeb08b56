package osm

// overpassEnvelope is the Overpass API JSON response envelope.
type overpassEnvelope struct {
	Version   float64 `json:"version"`
	Generator string  `json:"generator"`
	Osm3s     struct {
		TimestampOsmBase string `json:"timestamp_osm_base"`
		Copyright        string `json:"copyright"`
	} `json:"osm3s"`
	Elements []overpassElement `json:"elements"`
	Remark   string            `json:"remark,omitempty"`
}

// overpassElement is a single node or way element.
type overpassElement struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   float64           `json:"lat,omitempty"`
	Lon   float64           `json:"lon,omitempty"`
	Nodes []int64           `json:"nodes,omitempty"`
	Tags  map[string]string `json:"tags,omitempty"`
}
