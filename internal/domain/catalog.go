package domain

// Treatment is static reference data offered when booking.
type Treatment struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	DurationLabel string   `json:"durationLabel"`
	PriceAmount   *float64 `json:"priceAmount,omitempty"`
	Description   string   `json:"description,omitempty"`
	Category      string   `json:"category,omitempty"`
}

// Dentist is static reference data. Unavailable dentists stay visible on past appointments.
type Dentist struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Specialty       string   `json:"specialty"`
	Available       bool     `json:"available"`
	Schedule        []string `json:"schedule,omitempty"`
	ExperienceLabel string   `json:"experience,omitempty"`
}

// FilterAvailable returns the dentists that accept new bookings, preserving order.
func FilterAvailable(dentists []Dentist) []Dentist {
	out := make([]Dentist, 0, len(dentists))
	for _, d := range dentists {
		if d.Available {
			out = append(out, d)
		}
	}
	return out
}
