package roster

import (
	"errors"
	"testing"

	"github.com/scoutbook-labs/badge-tracker/internal/domain"
)

func TestScreen_Transitions(t *testing.T) {
	t.Parallel()

	scr := NewScreen()
	if scr.Mode != ModeLoading {
		t.Fatalf("mode=%s, want loading", scr.Mode)
	}
	if err := scr.OpenAdd(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("OpenAdd while loading err=%v, want ErrInvalidTransition", err)
	}

	alex := domain.Scout{ID: "a", Name: "Alex Rivera", Age: intPtr(13)}
	scr.Loaded([]domain.Scout{alex})
	if scr.Mode != ModeList || scr.Count() != 1 {
		t.Fatalf("after load mode=%s count=%d", scr.Mode, scr.Count())
	}

	if err := scr.OpenEdit(alex); err != nil {
		t.Fatalf("OpenEdit err=%v", err)
	}
	if scr.Form.Name != "Alex Rivera" || scr.Form.Age != "13" || scr.Form.Troop != "" {
		t.Fatalf("edit form not pre-populated: %+v", scr.Form)
	}
	if err := scr.RequestDelete(alex); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("RequestDelete from edit err=%v, want ErrInvalidTransition", err)
	}
	if err := scr.Cancel(); err != nil {
		t.Fatalf("Cancel err=%v", err)
	}
	if scr.Mode != ModeList || scr.Selected != nil {
		t.Fatalf("after cancel mode=%s selected=%v", scr.Mode, scr.Selected)
	}

	if err := scr.RequestDelete(alex); err != nil {
		t.Fatalf("RequestDelete err=%v", err)
	}
	want := "Are you sure you want to delete Alex Rivera? This action cannot be undone."
	if got := scr.DeletePrompt(); got != want {
		t.Fatalf("DeletePrompt=%q, want %q", got, want)
	}
	if err := scr.Cancel(); err != nil {
		t.Fatalf("Cancel err=%v", err)
	}
	if scr.Count() != 1 {
		t.Fatalf("cancel changed the list: count=%d", scr.Count())
	}
	if err := scr.Cancel(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Cancel from list err=%v, want ErrInvalidTransition", err)
	}
}

func TestNoticeFor(t *testing.T) {
	t.Parallel()

	n, ok := NoticeFor(NoticeAdded)
	if !ok || n.Text != "Scout added successfully!" || n.Kind != NoticeSuccess {
		t.Fatalf("NoticeFor(added)=%+v ok=%v", n, ok)
	}
	if _, ok := NoticeFor("bogus"); ok {
		t.Fatalf("expected unknown code to be rejected")
	}
}
