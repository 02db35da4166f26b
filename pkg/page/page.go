// Package page models the demo page as an element tree bound to the IDs the page script uses.
package page

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"mtlsdemo/pkg/demo"
)

// Element IDs shared with static/app.js.
const (
	IDRunButton       = "runDemoBtn"
	IDLoading         = "loading"
	IDOrdersSection   = "ordersSection"
	IDOrdersContainer = "ordersContainer"
	IDFE2BEStatus     = "fe2beStatus"
	IDFE2BEMessage    = "fe2beMessage"
	IDBE2DBStatus     = "be2dbStatus"
	IDBE2DBMessage    = "be2dbMessage"
)

const (
	defaultTitle = "SPIFFE/SPIRE Workload Identity Demo"

	notRunIcon  = "•"
	notRunLabel = "Not checked"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Page is one rendering of the demo page.
type Page struct {
	Title string

	RunButton       *Element
	Loading         *Element
	OrdersSection   *Element
	OrdersContainer *Element
	FE2BEStatus     *Element
	FE2BEMessage    *Element
	BE2DBStatus     *Element
	BE2DBMessage    *Element

	byID map[string]*Element
}

// New builds a page in its initial, never-probed state.
func New() *Page {
	p := &Page{Title: defaultTitle}

	p.RunButton = withText(NewElement("button", IDRunButton, "btn", "btn-primary"), "Run Demo")
	p.RunButton.Attrs = map[string]string{
		"type":  "submit",
		"name":  "run",
		"value": "1",
	}

	p.Loading = NewElement("div", IDLoading, "loading", ClassHidden)
	p.Loading.SetChildren(
		NewElement("span", "", "spinner"),
		withText(NewElement("span", ""), "Running demo..."),
	)

	p.FE2BEStatus = newStatusElement(IDFE2BEStatus)
	p.FE2BEMessage = NewElement("p", IDFE2BEMessage, "status-message")
	p.BE2DBStatus = newStatusElement(IDBE2DBStatus)
	p.BE2DBMessage = NewElement("p", IDBE2DBMessage, "status-message")

	p.OrdersContainer = NewElement("div", IDOrdersContainer, "orders-grid")
	p.OrdersSection = NewElement("section", IDOrdersSection, "orders-section", ClassHidden)
	p.OrdersSection.SetChildren(
		withText(NewElement("h3", ""), "Orders from PostgreSQL"),
		p.OrdersContainer,
	)

	p.byID = map[string]*Element{
		IDRunButton:       p.RunButton,
		IDLoading:         p.Loading,
		IDOrdersSection:   p.OrdersSection,
		IDOrdersContainer: p.OrdersContainer,
		IDFE2BEStatus:     p.FE2BEStatus,
		IDFE2BEMessage:    p.FE2BEMessage,
		IDBE2DBStatus:     p.BE2DBStatus,
		IDBE2DBMessage:    p.BE2DBMessage,
	}

	return p
}

func newStatusElement(id string) *Element {
	el := NewElement("div", id)
	el.SetClassName(demo.ClassStatus)
	el.SetChildren(
		withText(NewElement("span", "", "status-icon"), notRunIcon),
		withText(NewElement("span", "", "status-text"), notRunLabel),
	)
	return el
}

// ElementByID returns one of the bound elements, or nil.
func (p *Page) ElementByID(id string) *Element {
	return p.byID[id]
}

// Widgets returns controller widgets backed by this page's elements.
func (p *Page) Widgets() demo.Widgets {
	return demo.Widgets{
		Trigger:           buttonWidget{el: p.RunButton},
		Busy:              toggleWidget{el: p.Loading},
		Results:           toggleWidget{el: p.OrdersSection},
		Records:           recordsWidget{el: p.OrdersContainer},
		FrontendToBackend: statusWidget{status: p.FE2BEStatus, message: p.FE2BEMessage},
		BackendToDatabase: statusWidget{status: p.BE2DBStatus, message: p.BE2DBMessage},
	}
}

// Render writes the full HTML document.
func (p *Page) Render(w io.Writer) error {
	return indexTemplate.Execute(w, p)
}

// Summary renders the page state as plain text.
func (p *Page) Summary() string {
	var b strings.Builder

	writeStatusLine(&b, "Frontend -> Backend", p.FE2BEStatus, p.FE2BEMessage)
	writeStatusLine(&b, "Backend -> Database", p.BE2DBStatus, p.BE2DBMessage)

	if !p.OrdersSection.Visible() {
		return b.String()
	}

	fmt.Fprintf(&b, "Orders (%d):\n", len(p.OrdersContainer.Children))
	for _, card := range p.OrdersContainer.Children {
		fields := make([]string, 0, len(card.Children))
		for _, child := range card.Children {
			fields = append(fields, strings.TrimSpace(child.TextContent()))
		}
		fmt.Fprintf(&b, "  %s\n", strings.Join(fields, " | "))
	}

	return b.String()
}

func writeStatusLine(b *strings.Builder, name string, status, message *Element) {
	label := ""
	if text := status.FindByClass("status-text"); text != nil {
		label = text.TextContent()
	}

	fmt.Fprintf(b, "%-20s %-12s", name+":", label)
	if msg := message.TextContent(); msg != "" {
		b.WriteString(" " + msg)
	}
	b.WriteString("\n")
}
