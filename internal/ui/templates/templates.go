// Package templates renders the sam-ui pages and htmx fragments.
//
// The markup lives in embedded html/template files; each exported function wraps one named template as a templ.Component
// so handlers render pages and fragments the same way.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"time"

	"github.com/a-h/templ"

	"github.com/multiplica-sam/sam/internal/ui/dashboard"
	"github.com/multiplica-sam/sam/internal/ui/report"
	"github.com/multiplica-sam/sam/internal/ui/types"
)

//go:embed html/*.html
var htmlFiles embed.FS

//go:embed static
var staticFiles embed.FS

var funcs = template.FuncMap{
	"formatDate": types.FormatDateTime,
	"records":    types.FormatRecordsReturned,
	"orNA":       types.OrNA,
	"generating": report.Generating.Label,
}

var pages = template.Must(template.New("").Funcs(funcs).ParseFS(htmlFiles, "html/*.html"))

// Static returns the css, js and image assets served under /static/
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

func component(name string, data any) templ.Component {
	t := pages.Lookup(name)
	if t == nil {
		panic(fmt.Sprintf("template %q is not defined", name))
	}
	return templ.FromGoHTML(t, data)
}

// DashboardData is the model of the dashboard page
type DashboardData struct {
	Environment string
	Page        *dashboard.Page
}

// ReportButtonData is the model of the PDF button fragment.
// DownloadURL is set once, on the fragment answering a successful run.
type ReportButtonData struct {
	ChurchID    int
	State       report.State
	ResetDelay  time.Duration
	DownloadURL string
	FileName    string
}

// ResetMillis is the htmx delay before the idle button is fetched again
func (d ReportButtonData) ResetMillis() int64 {
	return d.ResetDelay.Milliseconds()
}

// ModalData is the model of the locality data modal; Selected is nil when nothing was selected
type ModalData struct {
	Selected *types.SelectedLocality
	Button   ReportButtonData
}

type StudentsData struct {
	Environment string
	Locality    types.LocalityCard
	Students    []types.StudentSummary
	Error       string
}

type StudentData struct {
	Environment string
	Student     *types.StudentResponse
	Error       string
}

type LogsData struct {
	Environment string
	Limit       int
	Logs        []types.ScrapingLogEntry
	Error       string
}

func DashboardPage(data DashboardData) templ.Component {
	return component("dashboard", data)
}

// SelectionPanel is the fragment that replaces #selection after a card click
func SelectionPanel(sel *types.SelectedLocality) templ.Component {
	return component("selection", sel)
}

func LocalityModal(data ModalData) templ.Component {
	return component("modal", data)
}

func ReportButton(data ReportButtonData) templ.Component {
	return component("report-button", data)
}

// ErrorAlert is the fragment used to show a user facing error message
func ErrorAlert(message string) templ.Component {
	return component("error-alert", message)
}

func StudentsPage(data StudentsData) templ.Component {
	return component("students", data)
}

func StudentPage(data StudentData) templ.Component {
	return component("student", data)
}

func LogsPage(data LogsData) templ.Component {
	return component("logs", data)
}
