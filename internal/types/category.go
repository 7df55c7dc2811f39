package types

// Category is a taxonomy entry: a fixed code, a display name, and the seed
// keywords used by the keyword scoring pass. Categories are immutable
// reference data loaded at startup.
type Category struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Assignment links a meeting or agenda item to a taxonomy category with a
// confidence score in [0,1]. Exactly one assignment per subject is primary.
type Assignment struct {
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
	Primary    bool    `json:"primary,omitempty"`
}
