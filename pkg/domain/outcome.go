package domain

// ResultKey identifies a terminal outcome. Its display text lives in a result catalog.
type ResultKey string

// Outcome is the catalog entry for a result key.
type Outcome struct {
	Key         ResultKey `json:"key" yaml:"-"`
	Message     string    `json:"message" yaml:"message" validate:"required"`
	Class       string    `json:"class" yaml:"class" validate:"required"`
	Description string    `json:"description" yaml:"description"`
}
