package page

import (
	"strings"

	"mtlsdemo/pkg/demo"
)

type buttonWidget struct {
	el *Element
}

func (w buttonWidget) SetEnabled(enabled bool) {
	w.el.Disabled = !enabled
}

type toggleWidget struct {
	el *Element
}

func (w toggleWidget) SetVisible(visible bool) {
	if visible {
		w.el.RemoveClass(ClassHidden)
		return
	}
	w.el.AddClass(ClassHidden)
}

type statusWidget struct {
	status  *Element
	message *Element
}

func (w statusWidget) Show(view demo.StatusView) {
	w.status.SetClassName(view.Class)
	w.status.SetChildren(
		withText(NewElement("span", "", "status-icon"), view.Icon),
		withText(NewElement("span", "", "status-text"), view.Label),
	)
	w.message.Text = view.Message
}

type recordsWidget struct {
	el *Element
}

func (w recordsWidget) Clear() {
	w.el.SetChildren()
}

func (w recordsWidget) Append(card demo.OrderCard) {
	status := NewElement("span", "", "order-status")
	status.SetClassName("order-status " + strings.ToLower(card.Status))
	status.Text = card.Status

	statusLine := NewElement("p", "")
	statusLine.SetChildren(withText(NewElement("strong", ""), "Status:"), TextNode(" "), status)

	createdLine := NewElement("p", "")
	createdLine.SetChildren(withText(NewElement("strong", ""), "Created:"), TextNode(" "+card.Created))

	el := NewElement("div", "", "order-card")
	el.SetChildren(
		withText(NewElement("h4", ""), card.Title),
		withText(NewElement("p", ""), card.Description),
		statusLine,
		createdLine,
	)
	w.el.AppendChild(el)
}
