package domain

// LocationHierarchy is one row of the static location reference table.
type LocationHierarchy struct {
	Name               string  `json:"location_name"`
	Type               string  `json:"location_type"`
	Parent             string  `json:"parent_location"`
	Department         string  `json:"department"`
	Lat                float64 `json:"latitude"`
	Lon                float64 `json:"longitude"`
	RiskLevel          string  `json:"risk_level"`
	PopulationEstimate int     `json:"population_estimate"`
	Notes              string  `json:"notes"`
}

// Geo returns the row's coordinates.
func (h LocationHierarchy) Geo() Geo {
	return Geo{Lat: h.Lat, Lon: h.Lon}
}

// SeedHierarchy is written to location_hierarchy on every migration.
var SeedHierarchy = []LocationHierarchy{
	{"Cité Soleil", PlaceSlum, "Port-au-Prince", "Ouest", 18.5944, -72.3251, "critical", 400000, "Largest slum, high gang activity"},
	{"Martissant", PlaceNeighborhood, "Port-au-Prince", "Ouest", 18.5089, -72.3570, "critical", 150000, "Gang-controlled area"},
	{"Bel Air", PlaceNeighborhood, "Port-au-Prince", "Ouest", 18.5463, -72.3387, "high", 100000, "Dense urban area"},
	{"Delmas", PlaceNeighborhood, "Port-au-Prince", "Ouest", 18.5456, -72.3084, "medium", 200000, "Mixed residential/commercial"},
	{"Pétion-Ville", PlaceNeighborhood, "Port-au-Prince", "Ouest", 18.5125, -72.2851, "low", 80000, "Wealthy suburb"},
	{"La Saline", PlaceSlum, "Port-au-Prince", "Ouest", 18.5539, -72.3478, "critical", 50000, "Port area slum"},
	{"Village de Dieu", PlaceSlum, "Port-au-Prince", "Ouest", 18.5200, -72.3600, "critical", 30000, "Informal settlement"},
	{"Carrefour", PlaceCommune, "Port-au-Prince", "Ouest", 18.5417, -72.3958, "high", 500000, "Large commune"},
	{"Tabarre", PlaceCommune, "Port-au-Prince", "Ouest", 18.5833, -72.2833, "medium", 100000, "Residential area"},
	{"Croix-des-Bouquets", PlaceCommune, "Port-au-Prince Metro", "Ouest", 18.5833, -72.2167, "high", 200000, "Agricultural commune"},
	{"Léogâne", PlaceCommune, "Port-au-Prince Metro", "Ouest", 18.5167, -72.6333, "medium", 200000, "Coastal town"},
	{"Gonaïves", PlaceCity, "Gonaïves", "Artibonite", 19.4500, -72.6900, "high", 300000, "Major port city"},
	{"Saint-Marc", PlaceCity, "Saint-Marc", "Artibonite", 19.1167, -72.7000, "medium", 250000, "Industrial city"},
	{"Cap-Haïtien", PlaceCity, "Cap-Haïtien", "Nord", 19.7667, -72.2000, "medium", 274000, "Second largest city"},
	{"Les Cayes", PlaceCity, "Les Cayes", "Sud", 18.2000, -73.7500, "medium", 200000, "Southern port city"},
	{"Jacmel", PlaceCity, "Jacmel", "Sud-Est", 18.2333, -72.5333, "low", 140000, "Tourism center"},
	{"Jérémie", PlaceCity, "Jérémie", "Grande-Anse", 18.6500, -74.1167, "medium", 120000, "Western city"},
	{"Hinche", PlaceCity, "Hinche", "Centre", 19.1500, -71.9833, "medium", 100000, "Central plateau"},
}

// LocationStat is one row of the location_analytics view.
type LocationStat struct {
	Location            string  `json:"location_text"`
	LocationType        string  `json:"location_type,omitempty"`
	Department          string  `json:"department,omitempty"`
	RiskLevel           string  `json:"risk_level,omitempty"`
	TotalReports        int     `json:"total_reports"`
	ViolenceReports     int     `json:"violence_reports"`
	KidnappingReports   int     `json:"kidnapping_reports"`
	DisplacementReports int     `json:"displacement_reports"`
	AidRequests         int     `json:"aid_requests"`
	AvgSeverity         float64 `json:"avg_severity"`
	LatestIncident      string  `json:"latest_incident"`
	Geo                 *Geo    `json:"geo,omitempty"`
}

// DailyCount is one row of the time_analytics view.
type DailyCount struct {
	Date      string `json:"report_date"`
	EventType string `json:"event_type"`
	Location  string `json:"location_text"`
	Count     int    `json:"daily_count"`
}
