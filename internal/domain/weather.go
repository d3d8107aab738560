package domain

// Weather is the current condition and today's range for a location.
type Weather struct {
	Description string  `json:"description"`
	IconURL     string  `json:"icon_url,omitempty"`
	TempC       float64 `json:"temp_c"`
	MinTempC    float64 `json:"min_temp_c"`
	MaxTempC    float64 `json:"max_temp_c"`
	// Placeholder marks a synthetic record carrying only a message in Description.
	Placeholder bool `json:"placeholder,omitempty"`
}
