package domain

import (
	"slices"
	"strconv"

	"github.com/kapu/cantina-go/internal/constants"
	"github.com/kapu/cantina-go/internal/util"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Person is one character record from the people API. The identifier is
// derived from URL and has no field of its own.
type Person struct {
	Name      string   `json:"name"`
	BirthYear string   `json:"birth_year"`
	EyeColor  string   `json:"eye_color"`
	Gender    string   `json:"gender"`
	HairColor string   `json:"hair_color"`
	Height    string   `json:"height"`
	Mass      string   `json:"mass"`
	SkinColor string   `json:"skin_color"`
	Homeworld string   `json:"homeworld"`
	Films     []string `json:"films"`
	Species   []string `json:"species"`
	Starships []string `json:"starships"`
	Vehicles  []string `json:"vehicles"`
	URL       string   `json:"url"`
}

// ID is the last path segment of the canonical resource URL.
func (p Person) ID() string {
	return util.LastPathSegment(p.URL)
}

// Equal compares every field, including the order of related URLs.
func (p Person) Equal(other Person) bool {
	return p.Name == other.Name &&
		p.BirthYear == other.BirthYear &&
		p.EyeColor == other.EyeColor &&
		p.Gender == other.Gender &&
		p.HairColor == other.HairColor &&
		p.Height == other.Height &&
		p.Mass == other.Mass &&
		p.SkinColor == other.SkinColor &&
		p.Homeworld == other.Homeworld &&
		p.URL == other.URL &&
		slices.Equal(p.Films, other.Films) &&
		slices.Equal(p.Species, other.Species) &&
		slices.Equal(p.Starships, other.Starships) &&
		slices.Equal(p.Vehicles, other.Vehicles)
}

// ImageURL points at the community image set keyed by person ID.
func (p Person) ImageURL() string {
	id := p.ID()
	if id == "" {
		return ""
	}
	return constants.APIConfig.ImageURLBase + id + ".jpg"
}

// FormattedHeight renders centimeters ("172 cm"); non-numeric values such
// as "unknown" come back unchanged.
func (p Person) FormattedHeight() string {
	return formatMeasurement(p.Height, "cm")
}

// FormattedMass renders kilograms ("77 kg").
func (p Person) FormattedMass() string {
	return formatMeasurement(p.Mass, "kg")
}

func formatMeasurement(raw, unit string) string {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	printer := message.NewPrinter(language.English)
	return printer.Sprintf("%v %s", number.Decimal(value, number.MaxFractionDigits(1)), unit)
}

// PeoplesEqual compares two person sequences element by element.
func PeoplesEqual(a, b []Person) bool {
	return slices.EqualFunc(a, b, Person.Equal)
}

// PageResult is one page of the paginated people listing.
type PageResult struct {
	Next    *string  `json:"next"`
	Results []Person `json:"results"`
}

// HasNext reports whether the server advertised another page.
func (r *PageResult) HasNext() bool {
	return r != nil && r.Next != nil && *r.Next != ""
}
