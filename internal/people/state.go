package people

import "github.com/kapu/cantina-go/internal/domain"

// DisplayMode tells a view which of its mutually exclusive bodies to render.
type DisplayMode string

const (
	DisplayList      DisplayMode = "list"
	DisplayLoading   DisplayMode = "loading"
	DisplayNoResults DisplayMode = "no_results"
	DisplayError     DisplayMode = "error"
)

func (m DisplayMode) String() string {
	return string(m)
}

// ViewState is an immutable snapshot of the list for rendering. Version
// increases with every published change so late deliveries can be dropped.
type ViewState struct {
	Version         uint64          `json:"version"`
	VisiblePeople   []domain.Person `json:"visible_people"`
	SearchText      string          `json:"search_text"`
	CurrentPage     int             `json:"current_page"`
	TotalLoaded     int             `json:"total_loaded"`
	IsLoading       bool            `json:"is_loading"`
	ReachedEnd      bool            `json:"reached_end"`
	HasError        bool            `json:"has_error"`
	IsPlayingMusic  bool            `json:"is_playing_music"`
	PresentedPerson *domain.Person  `json:"presented_person,omitempty"`
}

func (s ViewState) IsSearching() bool {
	return s.SearchText != ""
}

func (s ViewState) HasNoSearchResults() bool {
	return s.IsSearching() && len(s.VisiblePeople) == 0
}

// Display resolves precedence: error, then the empty-search placeholder,
// then a spinner for an empty list still loading, then the list.
func (s ViewState) Display() DisplayMode {
	switch {
	case s.HasError:
		return DisplayError
	case s.HasNoSearchResults():
		return DisplayNoResults
	case len(s.VisiblePeople) == 0 && s.IsLoading:
		return DisplayLoading
	default:
		return DisplayList
	}
}
