package httpserver

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"kotobuki_stay/internal/domain"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

const layoutFile = "templates/layout.gohtml"

var yenPrinter = message.NewPrinter(language.Japanese)

type vacancyButton struct{ Op, Label string }

var vacancyButtons = []vacancyButton{
	{string(domain.OpDecrement), "- 1室"},
	{string(domain.OpIncrement), "+ 1室"},
	{string(domain.OpSetFull), "満室にする"},
	{string(domain.OpSetAvailable), "全室空室"},
}

var funcs = template.FuncMap{
	"yen": func(n int) string { return yenPrinter.Sprintf("¥%d", n) },
	"opEnabled": func(op string, current, capacity int) bool {
		return domain.VacancyOpEnabled(domain.VacancyOp(op), current, capacity)
	},
	"vacancyButtons": func() []vacancyButton { return vacancyButtons },
}

// view is what every page template receives.
type view struct {
	Title   string
	User    *domain.Profile
	Flashes []Flash
	Refresh bool // send the browser back to /dashboard after two seconds
	Data    any
}

// renderer holds one template set per page, each parsed together with the layout.
type renderer struct{ pages map[string]*template.Template }

func newRenderer() (*renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, err
	}
	rd := &renderer{pages: map[string]*template.Template{}}
	for _, f := range files {
		if f == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(f), ".gohtml")
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, layoutFile, f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		rd.pages[name] = t
	}
	return rd, nil
}

// render executes into a buffer first so a template error never leaves a
// half-written page behind.
func (rd *renderer) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	t, ok := rd.pages[page]
	if !ok {
		log.Error().Str("page", page).Msg("unknown template")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		log.Error().Err(err).Str("page", page).Str("request_id", middleware.GetReqID(r.Context())).Msg("render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error().Err(err).Str("page", page).Msg("write page failed")
	}
}
