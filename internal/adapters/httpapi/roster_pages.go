package httpapi

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/scoutbook-labs/badge-tracker/internal/app/roster"
	"github.com/scoutbook-labs/badge-tracker/internal/domain"
)

const rosterTitle = "Scout Management | " + appTitle

func (s *Server) rosterView(r *http.Request, scr roster.Screen) rosterView {
	return rosterView{Layout: s.layout(r, rosterTitle), Screen: scr}
}

// handleRosterShell renders the page in loading mode; htmx then fetches the list.
func (s *Server) handleRosterShell(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, http.StatusOK, "roster_page", s.rosterView(r, roster.NewScreen()))
}

func (s *Server) handleRosterList(w http.ResponseWriter, r *http.Request) {
	scr := s.roster.LoadWithNotice(r.Context(), roster.NoticeCode(r.URL.Query().Get("notice")))
	status := http.StatusOK
	if scr.Notice != nil && scr.Notice.Kind == roster.NoticeError {
		status = http.StatusBadGateway
	}
	s.renderList(w, r, status, scr)
}

func (s *Server) handleOpenAdd(w http.ResponseWriter, r *http.Request) {
	s.renderModal(w, r, http.StatusOK, s.roster.OpenAdd(r.Context()))
}

func (s *Server) handleOpenEdit(w http.ResponseWriter, r *http.Request) {
	scr, err := s.roster.OpenEdit(r.Context(), scoutIDParam(r))
	if err != nil {
		s.renderLookupFailure(w, r, scr, err)
		return
	}
	s.renderModal(w, r, http.StatusOK, scr)
}

func (s *Server) handleOpenDelete(w http.ResponseWriter, r *http.Request) {
	scr, err := s.roster.OpenDelete(r.Context(), scoutIDParam(r))
	if err != nil {
		s.renderLookupFailure(w, r, scr, err)
		return
	}
	s.renderModal(w, r, http.StatusOK, scr)
}

func (s *Server) handleSubmitAdd(w http.ResponseWriter, r *http.Request) {
	scr, err := s.roster.SubmitAdd(r.Context(), formFromRequest(r))
	if err != nil {
		s.renderModalFailure(w, r, scr, err)
		return
	}
	s.renderMutated(w, r, scr, roster.NoticeAdded)
}

func (s *Server) handleSubmitEdit(w http.ResponseWriter, r *http.Request) {
	scr, err := s.roster.SubmitEdit(r.Context(), scoutIDParam(r), formFromRequest(r))
	if err != nil {
		s.renderModalFailure(w, r, scr, err)
		return
	}
	s.renderMutated(w, r, scr, roster.NoticeUpdated)
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	scr, err := s.roster.ConfirmDelete(r.Context(), scoutIDParam(r))
	if err != nil {
		s.renderModalFailure(w, r, scr, err)
		return
	}
	s.renderMutated(w, r, scr, roster.NoticeDeleted)
}

func (s *Server) renderList(w http.ResponseWriter, r *http.Request, status int, scr roster.Screen) {
	if isHTMX(r) {
		w.Header().Set("HX-Retarget", "#roster")
		w.Header().Set("HX-Reswap", "innerHTML")
		renderTemplate(w, r, status, "roster_fragment", s.rosterView(r, scr))
		return
	}
	renderTemplate(w, r, status, "roster_page", s.rosterView(r, scr))
}

func (s *Server) renderModal(w http.ResponseWriter, r *http.Request, status int, scr roster.Screen) {
	if isHTMX(r) {
		renderTemplate(w, r, status, "modal", s.rosterView(r, scr))
		return
	}
	renderTemplate(w, r, status, "roster_page", s.rosterView(r, scr))
}

// renderMutated shows the re-fetched list after a successful mutation. Plain forms
// follow the post/redirect/get pattern.
func (s *Server) renderMutated(w http.ResponseWriter, r *http.Request, scr roster.Screen, code roster.NoticeCode) {
	if !isHTMX(r) {
		http.Redirect(w, r, "/scouts/list?notice="+url.QueryEscape(string(code)), http.StatusSeeOther)
		return
	}
	w.Header().Set("HX-Push-Url", "/scouts/list")
	s.renderList(w, r, http.StatusOK, scr)
}

// renderModalFailure keeps the failing modal open with the user's input.
func (s *Server) renderModalFailure(w http.ResponseWriter, r *http.Request, scr roster.Screen, err error) {
	status := failureStatus(err)
	if !isHTMX(r) {
		s.roster.Backdrop(r.Context(), &scr)
	}
	s.renderModal(w, r, status, scr)
}

// renderLookupFailure is used when a row control names a scout that cannot be read.
func (s *Server) renderLookupFailure(w http.ResponseWriter, r *http.Request, scr roster.Screen, err error) {
	text := "Error loading scouts"
	if roster.IsNotFound(err) {
		text = "Scout not found."
	}
	scr.Notice = &roster.Notice{Kind: roster.NoticeError, Text: text}
	s.renderList(w, r, failureStatus(err), scr)
}

func failureStatus(err error) int {
	switch {
	case roster.IsValidation(err):
		return http.StatusUnprocessableEntity
	case roster.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func formFromRequest(r *http.Request) roster.ScoutForm {
	return roster.ScoutForm{
		Name:  r.PostFormValue("name"),
		Troop: r.PostFormValue("troop"),
		Age:   r.PostFormValue("age"),
		Email: r.PostFormValue("email"),
	}
}

func scoutIDParam(r *http.Request) domain.ScoutID {
	return domain.ScoutID(chi.URLParam(r, "scoutID"))
}
