package bridge

import (
	"github.com/kapu/cantina-go/internal/domain"
	"github.com/kapu/cantina-go/internal/people"
)

// IntentType names a client request sent over the bridge.
type IntentType string

const (
	IntentStart      IntentType = "start"
	IntentReachedEnd IntentType = "reached_end"
	IntentRetry      IntentType = "retry"
	IntentSearch     IntentType = "search"
	IntentSelect     IntentType = "select"
	IntentDismiss    IntentType = "dismiss"
	IntentWaveform   IntentType = "waveform"
)

// Intent is one inbound client message.
type Intent struct {
	Type IntentType `json:"type"`
	Text string     `json:"text,omitempty"` // search
	ID   string     `json:"id,omitempty"`   // select
}

const (
	MessageState = "state"
	MessageError = "error"
)

// PersonPayload carries the values remote views would otherwise derive from URL.
type PersonPayload struct {
	domain.Person
	ID              string `json:"id"`
	ImageURL        string `json:"image_url,omitempty"`
	FormattedHeight string `json:"formatted_height"`
	FormattedMass   string `json:"formatted_mass"`
}

func NewPersonPayload(person domain.Person) PersonPayload {
	return PersonPayload{
		Person:          person,
		ID:              person.ID(),
		ImageURL:        person.ImageURL(),
		FormattedHeight: person.FormattedHeight(),
		FormattedMass:   person.FormattedMass(),
	}
}

// StatePayload is a ViewState plus the values views derive from it. The
// person fields shadow the embedded ones on the wire.
type StatePayload struct {
	people.ViewState
	VisiblePeople      []PersonPayload    `json:"visible_people"`
	PresentedPerson    *PersonPayload     `json:"presented_person,omitempty"`
	IsSearching        bool               `json:"is_searching"`
	HasNoSearchResults bool               `json:"has_no_search_results"`
	Display            people.DisplayMode `json:"display"`
}

func NewStatePayload(state people.ViewState) *StatePayload {
	payload := &StatePayload{
		ViewState:          state,
		VisiblePeople:      make([]PersonPayload, 0, len(state.VisiblePeople)),
		IsSearching:        state.IsSearching(),
		HasNoSearchResults: state.HasNoSearchResults(),
		Display:            state.Display(),
	}
	for _, person := range state.VisiblePeople {
		payload.VisiblePeople = append(payload.VisiblePeople, NewPersonPayload(person))
	}
	if state.PresentedPerson != nil {
		presented := NewPersonPayload(*state.PresentedPerson)
		payload.PresentedPerson = &presented
	}
	return payload
}

// Message is one outbound server message.
type Message struct {
	Type  string        `json:"type"`
	State *StatePayload `json:"state,omitempty"`
	Error string        `json:"error,omitempty"`
}
