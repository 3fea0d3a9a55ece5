package httpapi

import (
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/a-h/templ"
	"github.com/gorilla/csrf"

	"github.com/scoutbook-labs/badge-tracker/internal/app/roster"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(
	template.New("pages").
		Funcs(template.FuncMap{"initial": initial}).
		ParseFS(templateFS, "templates/*.html"),
)

// layoutData is shared by every full page.
type layoutData struct {
	Title     string
	CSRFField template.HTML
	CSRFToken string
	SignOut   bool
}

type flash struct {
	Kind string
	Text string
}

type landingView struct {
	Layout   layoutData
	DemoMode bool
	Flash    *flash
}

type rosterView struct {
	Layout layoutData
	Screen roster.Screen
}

func (v rosterView) ListNotice() *roster.Notice {
	if v.Screen.Mode != roster.ModeList {
		return nil
	}
	return v.Screen.Notice
}

func (v rosterView) ModalNotice() *roster.Notice {
	if v.Screen.Mode == roster.ModeList || v.Screen.Mode == roster.ModeLoading {
		return nil
	}
	return v.Screen.Notice
}

func (v rosterView) FieldError(field string) string {
	return v.Screen.FieldErrors[field]
}

func (v rosterView) FormAction() string {
	if v.Screen.Mode == roster.ModeEdit && v.Screen.Selected != nil {
		return "/scouts/" + string(v.Screen.Selected.ID)
	}
	return "/scouts"
}

func (v rosterView) DeleteAction() string {
	if v.Screen.Selected == nil {
		return "/scouts/list"
	}
	return "/scouts/" + string(v.Screen.Selected.ID) + "/delete"
}

func (v rosterView) SelectedName() string {
	if v.Screen.Selected == nil {
		return ""
	}
	return v.Screen.Selected.Name
}

func (v rosterView) SelectedCreatedAt() string {
	if v.Screen.Selected == nil || v.Screen.Selected.CreatedAt.IsZero() {
		return ""
	}
	return v.Screen.Selected.CreatedAt.Format(time.DateOnly)
}

func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

func (s *Server) layout(r *http.Request, title string) layoutData {
	return layoutData{
		Title:     title,
		CSRFField: csrf.TemplateField(r),
		CSRFToken: csrf.Token(r),
		SignOut:   s.signIn != nil && s.signIn.IssuesSessions(),
	}
}

// renderTemplate executes one named template through templ's handler.
func renderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	c := templ.FromGoHTML(pageTemplates.Lookup(name), data)
	templ.Handler(c, templ.WithStatus(status)).ServeHTTP(w, r)
}
