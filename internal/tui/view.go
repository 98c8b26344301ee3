package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kapu/cantina-go/internal/domain"
	"github.com/kapu/cantina-go/internal/people"
	"github.com/kapu/cantina-go/internal/util"
)

// Theme holds the colors used by the view.
type Theme struct {
	Title     lipgloss.Color
	Accent    lipgloss.Color
	Faint     lipgloss.Color
	Error     lipgloss.Color
	Selection lipgloss.Color
}

var DefaultTheme = Theme{
	Title:     lipgloss.Color("#FFE81F"),
	Accent:    lipgloss.Color("#4FC3F7"),
	Faint:     lipgloss.Color("#7A7A7A"),
	Error:     lipgloss.Color("#FF5370"),
	Selection: lipgloss.Color("#3A3A5A"),
}

func (model Model) View() string {
	if person := model.state.PresentedPerson; person != nil {
		return model.renderDetail(*person)
	}

	sections := []string{model.renderHeader(), model.renderSearch(), model.renderBody(), model.renderFooter()}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (model Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(model.theme.Title)
	header := titleStyle.Render("Star Wars Characters")

	if model.state.IsPlayingMusic {
		musicStyle := lipgloss.NewStyle().Foreground(model.theme.Accent)
		header += "  " + musicStyle.Render("♫ ▁▃▅▇▅▃▁ (w to stop)")
	}

	countStyle := lipgloss.NewStyle().Foreground(model.theme.Faint)
	counts := fmt.Sprintf("  %d loaded, page %d", model.state.TotalLoaded, model.state.CurrentPage)
	return header + countStyle.Render(counts)
}

func (model Model) renderSearch() string {
	if model.searching {
		return model.search.View()
	}
	faint := lipgloss.NewStyle().Foreground(model.theme.Faint)
	if model.state.SearchText == "" {
		return faint.Render("/ to search")
	}
	return faint.Render("search: ") + model.state.SearchText
}

func (model Model) renderBody() string {
	switch model.state.Display() {
	case people.DisplayError:
		errorStyle := lipgloss.NewStyle().Foreground(model.theme.Error)
		return errorStyle.Render("Something went wrong loading characters.") + "\n" +
			lipgloss.NewStyle().Foreground(model.theme.Faint).Render("Press r to retry.")

	case people.DisplayNoResults:
		return lipgloss.NewStyle().Foreground(model.theme.Faint).
			Render(fmt.Sprintf("No results for %q", model.state.SearchText))

	case people.DisplayLoading:
		return model.spinner.View() + " Loading characters..."
	}

	return model.renderList()
}

func (model Model) renderList() string {
	visible := model.state.VisiblePeople
	rows := model.listRows()
	end := min(model.offset+rows, len(visible))

	rowStyle := lipgloss.NewStyle().Width(max(model.width-2, 10))
	selectedStyle := rowStyle.
		Background(model.theme.Selection).
		Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(model.theme.Faint)

	lines := make([]string, 0, end-model.offset+1)
	for i := model.offset; i < end; i++ {
		person := visible[i]
		line := fmt.Sprintf("%-28s %s", util.TruncateString(person.Name, 28), metaStyle.Render(person.BirthYear))
		if i == model.cursor {
			lines = append(lines, selectedStyle.Render("› "+line))
		} else {
			lines = append(lines, rowStyle.Render("  "+line))
		}
	}

	if model.state.IsLoading {
		lines = append(lines, model.spinner.View()+" Loading more...")
	} else if model.state.ReachedEnd && !model.state.IsSearching() {
		lines = append(lines, metaStyle.Render("  That's everyone."))
	}
	return strings.Join(lines, "\n")
}

func (model Model) renderFooter() string {
	bindings := []struct{ key, help string }{
		{model.keys.Up.Help().Key + " " + model.keys.Down.Help().Key, "move"},
		{model.keys.Select.Help().Key, model.keys.Select.Help().Desc},
		{model.keys.Search.Help().Key, model.keys.Search.Help().Desc},
		{model.keys.Retry.Help().Key, model.keys.Retry.Help().Desc},
		{model.keys.Waveform.Help().Key, model.keys.Waveform.Help().Desc},
		{model.keys.Quit.Help().Key, model.keys.Quit.Help().Desc},
	}

	keyStyle := lipgloss.NewStyle().Foreground(model.theme.Accent)
	descStyle := lipgloss.NewStyle().Foreground(model.theme.Faint)
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		parts = append(parts, keyStyle.Render(binding.key)+" "+descStyle.Render(binding.help))
	}
	return "\n" + strings.Join(parts, "  ")
}

func (model Model) renderDetail(person domain.Person) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(model.theme.Title).
		MarginBottom(1)
	labelStyle := lipgloss.NewStyle().
		Foreground(model.theme.Faint).
		Width(12)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.Accent).
		Padding(0, 1)

	field := func(label, value string) string {
		return labelStyle.Render(label) + value
	}

	lines := []string{
		titleStyle.Render(person.Name),
		field("Born", person.BirthYear),
		field("Gender", util.Capitalize(person.Gender)),
		field("Height", person.FormattedHeight()),
		field("Mass", person.FormattedMass()),
		field("Hair", util.Capitalize(person.HairColor)),
		field("Skin", util.Capitalize(person.SkinColor)),
		field("Eyes", util.Capitalize(person.EyeColor)),
		"",
		field("Films", fmt.Sprintf("%d", len(person.Films))),
		field("Species", fmt.Sprintf("%d", len(person.Species))),
		field("Starships", fmt.Sprintf("%d", len(person.Starships))),
		field("Vehicles", fmt.Sprintf("%d", len(person.Vehicles))),
	}
	if image := person.ImageURL(); image != "" {
		lines = append(lines, "", field("Image", image))
	}

	help := lipgloss.NewStyle().Foreground(model.theme.Faint).Render("esc back  w stop music  q quit")
	return boxStyle.Render(strings.Join(lines, "\n")) + "\n" + help
}
