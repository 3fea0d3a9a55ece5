package roster

import (
	"context"
	"errors"
	"log/slog"

	"github.com/scoutbook-labs/badge-tracker/internal/domain"
)

// Observer receives one call per roster operation. Outcome is "ok", "invalid", "not_found" or "error".
type Observer interface {
	RosterOp(op, outcome string)
}

// Controller drives the roster screen: every event ends in a full list re-fetch or
// in the current modal staying open.
type Controller struct {
	svc *Service
	log *slog.Logger
	obs Observer
}

func NewController(svc *Service, log *slog.Logger, obs Observer) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{svc: svc, log: log, obs: obs}
}

// Load fetches the list. On failure the list is empty and an error notice is shown.
func (c *Controller) Load(ctx context.Context) Screen {
	scr := NewScreen()
	c.reload(ctx, &scr)
	return scr
}

// LoadWithNotice is Load followed by the success notice for code, if any.
func (c *Controller) LoadWithNotice(ctx context.Context, code NoticeCode) Screen {
	scr := c.Load(ctx)
	if scr.Notice == nil {
		if n, ok := NoticeFor(code); ok {
			scr.Notice = &n
		}
	}
	return scr
}

func (c *Controller) OpenAdd(ctx context.Context) Screen {
	scr := c.Load(ctx)
	_ = scr.OpenAdd()
	return scr
}

func (c *Controller) OpenEdit(ctx context.Context, id domain.ScoutID) (Screen, error) {
	scr := c.Load(ctx)
	sc, err := c.lookup(ctx, "edit", id)
	if err != nil {
		return scr, err
	}
	_ = scr.OpenEdit(sc)
	return scr, nil
}

func (c *Controller) OpenDelete(ctx context.Context, id domain.ScoutID) (Screen, error) {
	scr := c.Load(ctx)
	sc, err := c.lookup(ctx, "delete", id)
	if err != nil {
		return scr, err
	}
	_ = scr.RequestDelete(sc)
	return scr, nil
}

// SubmitAdd validates and inserts. On success the returned screen is the re-fetched
// list with the success notice. Otherwise the add modal stays open with the input
// and no list is fetched; call Backdrop to fill it for a full-page render.
func (c *Controller) SubmitAdd(ctx context.Context, form ScoutForm) (Screen, error) {
	if _, err := c.svc.AddScout(ctx, form); err != nil {
		scr := Screen{Mode: ModeAdd, Form: form}
		c.fail(ctx, &scr, "add", textAddFailed, err)
		return scr, err
	}
	c.observe("add", "ok")
	return c.LoadWithNotice(ctx, NoticeAdded), nil
}

func (c *Controller) SubmitEdit(ctx context.Context, id domain.ScoutID, form ScoutForm) (Screen, error) {
	if _, err := c.svc.UpdateScout(ctx, id, form); err != nil {
		scr := Screen{Mode: ModeEdit, Selected: c.reselect(ctx, id, form.Name), Form: form}
		c.fail(ctx, &scr, "update", textUpdateFailed, err)
		return scr, err
	}
	c.observe("update", "ok")
	return c.LoadWithNotice(ctx, NoticeUpdated), nil
}

// ConfirmDelete deletes the scout. Cancelling is Cancel on the screen and never reaches here.
func (c *Controller) ConfirmDelete(ctx context.Context, id domain.ScoutID) (Screen, error) {
	if err := c.svc.DeleteScout(ctx, id); err != nil {
		scr := Screen{Mode: ModeConfirmDelete, Selected: c.reselect(ctx, id, "")}
		c.fail(ctx, &scr, "delete", textDeleteFailed, err)
		return scr, err
	}
	c.observe("delete", "ok")
	return c.LoadWithNotice(ctx, NoticeDeleted), nil
}

// Backdrop fills the list behind an open modal without changing its mode.
func (c *Controller) Backdrop(ctx context.Context, scr *Screen) {
	scouts, err := c.svc.ListScouts(ctx)
	if err != nil {
		c.log.ErrorContext(ctx, "roster backend call failed", "op", "load", "err", err)
		c.observe("load", "error")
		return
	}
	scr.Scouts = scouts
}

// reselect re-reads id for a failing modal so it keeps the stored name and date.
// When the scout cannot be read, only id and fallbackName are known.
func (c *Controller) reselect(ctx context.Context, id domain.ScoutID, fallbackName string) *domain.Scout {
	if sc, err := c.svc.GetScout(ctx, id); err == nil {
		return &sc
	}
	return &domain.Scout{ID: id, Name: fallbackName}
}

func (c *Controller) reload(ctx context.Context, scr *Screen) {
	scouts, err := c.svc.ListScouts(ctx)
	if err != nil {
		c.log.ErrorContext(ctx, "roster backend call failed", "op", "load", "err", err)
		c.observe("load", "error")
		scr.Loaded(nil)
		scr.Notice = &Notice{Kind: NoticeError, Text: textLoadFailed}
		return
	}
	c.observe("load", "ok")
	scr.Loaded(scouts)
}

func (c *Controller) lookup(ctx context.Context, op string, id domain.ScoutID) (domain.Scout, error) {
	sc, err := c.svc.GetScout(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			c.observe(op, "not_found")
		} else {
			c.log.ErrorContext(ctx, "roster backend call failed", "op", op, "err", err)
			c.observe(op, "error")
		}
		return domain.Scout{}, err
	}
	return sc, nil
}

// fail records err on the open modal. Validation errors show their own message;
// everything else is logged and shown as the generic text.
func (c *Controller) fail(ctx context.Context, scr *Screen, op, text string, err error) {
	var ae *Error
	if errors.As(err, &ae) && ae.Code == CodeValidation {
		c.observe(op, "invalid")
		scr.Failed(ae.Message, fieldErrors(ae.Details))
		return
	}
	if IsNotFound(err) {
		c.observe(op, "not_found")
	} else {
		c.log.ErrorContext(ctx, "roster backend call failed", "op", op, "err", err)
		c.observe(op, "error")
	}
	scr.Failed(text, nil)
}

func (c *Controller) observe(op, outcome string) {
	if c.obs != nil {
		c.obs.RosterOp(op, outcome)
	}
}

func fieldErrors(details map[string]any) map[string]string {
	if len(details) == 0 {
		return nil
	}
	out := make(map[string]string, len(details))
	for k, v := range details {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
