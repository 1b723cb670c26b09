package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"auction-advisor/internal/domain"
)

// View renders the form.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("911 Auction Price Advisor"))
	b.WriteString("\n")

	rows := []struct {
		f     field
		label string
		value string
	}{
		{fieldYear, "Model year", m.inputs[inputYear].View()},
		{fieldMileage, "Mileage", m.inputs[inputMileage].View()},
		{fieldSubmodel, "Submodel", "‹ " + domain.Submodels[m.submodel].String() + " ›"},
		{fieldTitle, "Listing title", m.inputs[inputTitle].View()},
		{fieldZIP, "Seller ZIP", m.inputs[inputZIP].View()},
	}
	for _, r := range rows {
		label := m.styles.label
		if m.focus == r.f {
			label = m.styles.focused
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label.Render(r.label), r.value))
		b.WriteString("\n")
	}

	button := m.styles.button
	if m.focus == fieldButton {
		button = m.styles.active
	}
	caption := "Estimate price"
	if m.estimating {
		caption = "Estimating..."
	}
	b.WriteString(button.Render(caption))
	b.WriteString("\n")

	b.WriteString(m.styles.muted.Render("Recommended auction window: " + m.timing.MonthLabel))
	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render("Recommended end day: " + m.timing.DayLabel))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(m.styles.errorMsg.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	case m.estimate != nil:
		result := "Estimated sale price: " + m.styles.price.Render(m.estimate.PriceText) + "\n" + m.estimate.Summary
		box := m.styles.box
		if m.width > 4 {
			box = box.Width(m.width - 4)
		}
		b.WriteString(box.Render(result))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.muted.Render("tab/shift+tab move • ←/→ submodel • enter estimate • esc quit"))
	b.WriteString("\n")
	return b.String()
}
