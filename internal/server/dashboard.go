package server

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/gkobilansky/abreport/internal/actions"
	"github.com/gkobilansky/abreport/internal/dashboard"
	"github.com/gkobilansky/abreport/internal/form"
	"github.com/gkobilansky/abreport/internal/report"
	"github.com/gkobilansky/abreport/internal/store"
	"go.uber.org/zap"
)

// Dashboard template data structures
type layoutData struct {
	Title   string
	CSS     template.CSS
	Content template.HTML
}

type listData struct {
	Tests []testListItem
}

type testListItem struct {
	ID          string
	Name        string
	Description string
	Status      string
	StatusClass string
	Period      string
	Audience    []string
	Split       string
	Winner      string
}

type newData struct {
	Error    string
	Errors   map[string]string
	Values   url.Values
	Variants []variantInput
	Audience []audienceOption
	SplitA   int
	SplitB   int
}

type variantInput struct {
	ID          string
	Prefix      string
	Name        string
	Description string
	ImageURL    string

	NameError        string
	DescriptionError string
	ImageURLError    string
}

type audienceOption struct {
	Name     string
	Selected bool
}

type reportData struct {
	View     report.View
	Format   report.Format
	Formats  []formatOption
	Sections report.Sections
}

type formatOption struct {
	Value    report.Format
	Label    string
	Selected bool
}

type notFoundData struct {
	ID string
}

type messageData struct {
	Heading string
	Message string
	Back    string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	// Handle logout
	if r.URL.Query().Get("logout") == "1" {
		http.SetCookie(w, &http.Cookie{
			Name:   tokenCookieName,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	tests, err := s.provider.ListTests(r.Context())
	if err != nil {
		s.logger.Error("failed to list tests", zap.Error(err))
		http.Error(w, "Failed to load tests", http.StatusInternalServerError)
		return
	}

	now := s.now()
	items := make([]testListItem, len(tests))
	for i, t := range tests {
		v := report.Build(t, now)
		items[i] = testListItem{
			ID:          v.ID,
			Name:        v.Title,
			Description: v.Description,
			Status:      string(v.Status),
			StatusClass: v.Status.Class(),
			Period:      v.Period,
			Audience:    v.Audience,
			Split:       v.Split,
			Winner:      v.Winner,
		}
	}

	s.renderDashboard(w, http.StatusOK, "Dashboard", "list.html", listData{Tests: items})
}

func (s *Server) handleNewForm(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, http.StatusOK, "New Test", "new.html", newFormData(form.New(), nil))
}

func (s *Server) handleNewSubmit(w http.ResponseWriter, r *http.Request) {
	if s.creator == nil {
		s.renderMessage(w, http.StatusNotImplemented, "Read-only data source",
			"This dashboard's data source does not accept new tests.", "/")
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	draft := form.New()
	verr := &store.ValidationError{}
	collect := func(err error) bool {
		var fieldErrs *store.ValidationError
		if errors.As(err, &fieldErrs) {
			verr.Fields = append(verr.Fields, fieldErrs.Fields...)
			return true
		}
		return false
	}

	if err := draft.Decode(r.PostForm); err != nil && !collect(err) {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	test, err := draft.Build(s.newID(), s.now().UTC())
	if err != nil && !collect(err) {
		s.logger.Error("failed to build test", zap.Error(err))
		http.Error(w, "Failed to create test", http.StatusInternalServerError)
		return
	}
	if len(verr.Fields) > 0 {
		s.renderDashboard(w, http.StatusUnprocessableEntity, "New Test", "new.html", newFormData(draft, verr))
		return
	}

	created, err := s.creator.CreateTest(r.Context(), test)
	if collect(err) {
		s.renderDashboard(w, http.StatusUnprocessableEntity, "New Test", "new.html", newFormData(draft, verr))
		return
	}
	if err != nil {
		s.logger.Error("failed to create test", zap.Error(err))
		http.Error(w, "Failed to create test", http.StatusInternalServerError)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordTestCreated("form")
	}
	s.logger.Info("test created", zap.String("id", created.ID), zap.String("name", created.Name))
	http.Redirect(w, r, "/report/"+created.ID, http.StatusSeeOther)
}

// newFormData repopulates the form from d, attaching verr's messages to
// their fields.
func newFormData(d *form.Draft, verr *store.ValidationError) newData {
	data := newData{
		Errors: map[string]string{},
		Values: d.Values(),
		SplitA: d.TrafficSplit.VariantA,
		SplitB: d.TrafficSplit.VariantB,
	}

	if verr != nil {
		data.Error = "Please fix the highlighted fields."
		for _, f := range verr.Fields {
			if _, seen := data.Errors[f.Field]; !seen {
				data.Errors[f.Field] = f.Message
			}
		}
	}

	for _, id := range []store.VariantID{store.VariantA, store.VariantB} {
		v, _ := d.Variants.Get(id)
		lower := strings.ToLower(string(id))
		data.Variants = append(data.Variants, variantInput{
			ID:          string(id),
			Prefix:      "variant_" + lower,
			Name:        v.Name,
			Description: v.Description,
			ImageURL:    v.ImageURL,

			NameError:        data.Errors["variants."+lower+".name"],
			DescriptionError: data.Errors["variants."+lower+".description"],
			ImageURLError:    data.Errors["variants."+lower+".image_url"],
		})
	}

	for _, tag := range form.AudienceOptions {
		data.Audience = append(data.Audience, audienceOption{
			Name:     tag,
			Selected: slices.Contains(d.TargetAudience, tag),
		})
	}

	return data
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTest(w, r)
	if !ok {
		return
	}

	format := report.ParseFormat(r.URL.Query().Get("format"))
	data := reportData{
		View:     report.Build(t, s.now()),
		Format:   format,
		Sections: format.Sections(),
	}
	for _, f := range report.Formats {
		data.Formats = append(data.Formats, formatOption{
			Value:    f,
			Label:    strings.ToUpper(string(f[:1])) + string(f[1:]),
			Selected: f == format,
		})
	}

	if s.metrics != nil {
		s.metrics.RecordReportView(string(format))
	}
	s.renderDashboard(w, http.StatusOK, t.Name, "report.html", data)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTest(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = actions.FormatCSV
	}

	var buf bytes.Buffer
	err := s.downloader.Download(r.Context(), &buf, t, format)
	if errors.Is(err, actions.ErrNotImplemented) {
		s.renderMessage(w, http.StatusNotImplemented, "Download unavailable",
			fmt.Sprintf("%s download is not yet implemented.", strings.ToUpper(format)), "/report/"+t.ID)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", s.downloader.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "report-"+t.ID+"."+format))
	w.Write(buf.Bytes())
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTest(w, r)
	if !ok {
		return
	}

	link, err := s.sharer.Share(r.Context(), t)
	if errors.Is(err, actions.ErrNotImplemented) {
		s.renderMessage(w, http.StatusNotImplemented, "Sharing unavailable",
			"Sharing reports is not yet implemented.", "/report/"+t.ID)
		return
	}
	if err != nil {
		s.logger.Error("failed to share report", zap.String("id", t.ID), zap.Error(err))
		http.Error(w, "Failed to share report", http.StatusInternalServerError)
		return
	}

	s.renderMessage(w, http.StatusOK, "Report shared", "Share link: "+link, "/report/"+t.ID)
}

func (s *Server) handleDuplicate(w http.ResponseWriter, r *http.Request) {
	if s.duplicator == nil {
		s.renderMessage(w, http.StatusNotImplemented, "Duplicate unavailable",
			"Duplicating tests is not yet implemented for this data source.", "/")
		return
	}

	id := r.PathValue("id")
	dup, err := s.duplicator.Duplicate(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.renderNotFound(w, id)
		return
	case errors.Is(err, actions.ErrNotImplemented):
		s.renderMessage(w, http.StatusNotImplemented, "Duplicate unavailable",
			"Duplicating tests is not yet implemented.", "/")
		return
	case err != nil:
		s.logger.Error("failed to duplicate test", zap.String("id", id), zap.Error(err))
		http.Error(w, "Failed to duplicate test", http.StatusInternalServerError)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordTestCreated("duplicate")
	}
	s.logger.Info("test duplicated", zap.String("source", id), zap.String("id", dup.ID))
	http.Redirect(w, r, "/report/"+dup.ID, http.StatusSeeOther)
}

// lookupTest loads the test named by the {id} path value. It writes the
// not-found page or a 500 itself and reports whether the caller should go on.
func (s *Server) lookupTest(w http.ResponseWriter, r *http.Request) (*store.Test, bool) {
	id := r.PathValue("id")

	t, err := s.provider.GetTest(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.renderNotFound(w, id)
		return nil, false
	}
	if err != nil {
		s.logger.Error("failed to get test", zap.String("id", id), zap.Error(err))
		http.Error(w, "Failed to load test", http.StatusInternalServerError)
		return nil, false
	}
	return t, true
}

func (s *Server) renderNotFound(w http.ResponseWriter, id string) {
	s.renderDashboard(w, http.StatusNotFound, "Not Found", "notfound.html", notFoundData{ID: id})
}

func (s *Server) renderMessage(w http.ResponseWriter, status int, heading, message, back string) {
	s.renderDashboard(w, status, heading, "message.html", messageData{
		Heading: heading,
		Message: message,
		Back:    back,
	})
}

func (s *Server) renderDashboard(w http.ResponseWriter, status int, title, contentTemplate string, data any) {
	// Load CSS
	cssBytes, err := dashboard.Assets.ReadFile("assets/style.css")
	if err != nil {
		http.Error(w, "Failed to load styles", http.StatusInternalServerError)
		return
	}

	// Load and execute content template
	contentTmpl, err := template.ParseFS(dashboard.Templates, "templates/"+contentTemplate)
	if err != nil {
		s.logger.Error("failed to parse template", zap.String("template", contentTemplate), zap.Error(err))
		http.Error(w, "Failed to parse template", http.StatusInternalServerError)
		return
	}

	var contentBuf bytes.Buffer
	if err := contentTmpl.Execute(&contentBuf, data); err != nil {
		s.logger.Error("failed to render template", zap.String("template", contentTemplate), zap.Error(err))
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}

	// Load and execute layout template
	layoutTmpl, err := template.ParseFS(dashboard.Templates, "templates/layout.html")
	if err != nil {
		http.Error(w, "Failed to parse layout", http.StatusInternalServerError)
		return
	}

	var page bytes.Buffer
	if err := layoutTmpl.Execute(&page, layoutData{
		Title:   title,
		CSS:     template.CSS(cssBytes),
		Content: template.HTML(contentBuf.String()),
	}); err != nil {
		s.logger.Error("failed to render layout", zap.Error(err))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(page.Bytes())
}
