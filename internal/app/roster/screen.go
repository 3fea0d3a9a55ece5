package roster

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/scoutbook-labs/badge-tracker/internal/domain"
)

// Mode is the single active mode of the roster screen.
type Mode string

const (
	ModeLoading       Mode = "loading"
	ModeList          Mode = "list"
	ModeAdd           Mode = "add"
	ModeEdit          Mode = "edit"
	ModeConfirmDelete Mode = "confirm-delete"
)

// ErrInvalidTransition is returned when an event is not allowed in the current mode.
var ErrInvalidTransition = errors.New("invalid roster screen transition")

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "danger"
)

// Notice is the message shown after an operation.
type Notice struct {
	Kind NoticeKind
	Text string
}

// NoticeCode names a success notice carried across a redirect (?notice=added).
type NoticeCode string

const (
	NoticeAdded   NoticeCode = "added"
	NoticeUpdated NoticeCode = "updated"
	NoticeDeleted NoticeCode = "deleted"
)

var successNotices = map[NoticeCode]string{
	NoticeAdded:   "Scout added successfully!",
	NoticeUpdated: "Scout updated successfully!",
	NoticeDeleted: "Scout deleted successfully",
}

// NoticeFor returns the success notice for code. Unknown codes yield false.
func NoticeFor(code NoticeCode) (Notice, bool) {
	text, ok := successNotices[code]
	if !ok {
		return Notice{}, false
	}
	return Notice{Kind: NoticeSuccess, Text: text}, true
}

const (
	textLoadFailed   = "Error loading scouts"
	textAddFailed    = "Error adding scout"
	textUpdateFailed = "Error updating scout"
	textDeleteFailed = "Error deleting scout"
)

// Screen is the roster screen state. Exactly one Mode is active; Selected is set
// in edit and confirm-delete, Form is set in add and edit.
type Screen struct {
	Mode   Mode
	Scouts []domain.Scout

	Selected    *domain.Scout
	Form        ScoutForm
	FieldErrors map[string]string

	Notice *Notice
}

// NewScreen returns the screen as it is on entry.
func NewScreen() Screen {
	return Screen{Mode: ModeLoading}
}

func (s Screen) Count() int { return len(s.Scouts) }

// Loaded completes a (re-)fetch and returns to the list.
func (s *Screen) Loaded(scouts []domain.Scout) {
	s.Mode = ModeList
	s.Scouts = scouts
	s.Selected = nil
	s.Form = ScoutForm{}
	s.FieldErrors = nil
}

func (s *Screen) OpenAdd() error {
	if s.Mode != ModeList {
		return fmt.Errorf("%w: add from %s", ErrInvalidTransition, s.Mode)
	}
	s.Mode = ModeAdd
	s.Selected = nil
	s.Form = ScoutForm{}
	s.FieldErrors = nil
	return nil
}

// OpenEdit selects sc and pre-populates the form from it.
func (s *Screen) OpenEdit(sc domain.Scout) error {
	if s.Mode != ModeList {
		return fmt.Errorf("%w: edit from %s", ErrInvalidTransition, s.Mode)
	}
	s.Mode = ModeEdit
	s.Selected = &sc
	s.Form = FormFromScout(sc)
	s.FieldErrors = nil
	return nil
}

func (s *Screen) RequestDelete(sc domain.Scout) error {
	if s.Mode != ModeList {
		return fmt.Errorf("%w: delete from %s", ErrInvalidTransition, s.Mode)
	}
	s.Mode = ModeConfirmDelete
	s.Selected = &sc
	return nil
}

// Cancel closes any modal without touching the list.
func (s *Screen) Cancel() error {
	switch s.Mode {
	case ModeAdd, ModeEdit, ModeConfirmDelete:
	default:
		return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, s.Mode)
	}
	s.Mode = ModeList
	s.Selected = nil
	s.Form = ScoutForm{}
	s.FieldErrors = nil
	return nil
}

// Failed keeps the current modal open with the user's input and shows text.
func (s *Screen) Failed(text string, fieldErrors map[string]string) {
	s.Notice = &Notice{Kind: NoticeError, Text: text}
	s.FieldErrors = fieldErrors
}

// DeletePrompt is the confirmation text for the selected scout.
func (s Screen) DeletePrompt() string {
	if s.Selected == nil || s.Selected.Name == "" {
		return "Are you sure you want to delete this scout? This action cannot be undone."
	}
	return fmt.Sprintf("Are you sure you want to delete %s? This action cannot be undone.", s.Selected.Name)
}

// FormFromScout renders sc back into form text.
func FormFromScout(sc domain.Scout) ScoutForm {
	f := ScoutForm{Name: sc.Name}
	if sc.Troop != nil {
		f.Troop = *sc.Troop
	}
	if sc.Age != nil {
		f.Age = strconv.Itoa(*sc.Age)
	}
	if sc.Email != nil {
		f.Email = *sc.Email
	}
	return f
}
