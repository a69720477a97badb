// Package bloom decides which plants are in bloom on a given day-of-year.
//
// Plant records arrive from the external data layer with optional bloom
// bounds expressed either as day-of-year values or as months. Optional
// fields are modeled as pointers at the ingestion boundary so the
// day-vs-month branching stays explicit and testable.
package bloom

import (
	"fmt"
)

// Plant is the validated record consumed by the bloom index. Day-of-year
// bounds take precedence over month bounds when both are present.
type Plant struct {
	ID             string
	CommonName     string
	ScientificName string
	Cultivar       string

	// Day-of-year bloom bounds (1..365), preferred when both are set.
	BloomStartDay *int
	BloomEndDay   *int

	// Month bloom bounds (1..12), used when day bounds are absent.
	BloomStartMonth *int
	BloomEndMonth   *int
}

// DisplayName returns the user-facing plant name: the common name when
// present, otherwise the scientific name, with the cultivar appended in
// single quotes when set.
func (p Plant) DisplayName() string {
	name := p.CommonName
	if name == "" {
		name = p.ScientificName
	}
	if p.Cultivar != "" {
		return fmt.Sprintf("%s '%s'", name, p.Cultivar)
	}
	return name
}

// HasDayBounds reports whether both day-of-year bloom bounds are present.
func (p Plant) HasDayBounds() bool {
	return p.BloomStartDay != nil && p.BloomEndDay != nil
}

// HasMonthBounds reports whether both month bloom bounds are present.
func (p Plant) HasMonthBounds() bool {
	return p.BloomStartMonth != nil && p.BloomEndMonth != nil
}

// HasBloomData reports whether the plant carries any usable bloom metadata.
// Plants without bloom data are silently excluded from bloom queries.
func (p Plant) HasBloomData() bool {
	return p.HasDayBounds() || p.HasMonthBounds()
}
