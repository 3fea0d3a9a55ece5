package roster

import (
	"context"
	"encoding/json"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/scoutbook-labs/badge-tracker/internal/domain"
	clockport "github.com/scoutbook-labs/badge-tracker/internal/ports/out/clock"
	"github.com/scoutbook-labs/badge-tracker/internal/ports/out/scoutrepo"
)

// Service owns the scout roster rules. Validation always runs before any repository call.
type Service struct {
	repo scoutrepo.Repository
	clk  clockport.Clock

	newScoutID func() domain.ScoutID
}

func NewService(repo scoutrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		repo: repo,
		clk:  clk,
		newScoutID: func() domain.ScoutID {
			return domain.ScoutID(uuid.NewString())
		},
	}
}

// SetNewScoutIDForTest overrides ID generation.
func (s *Service) SetNewScoutIDForTest(fn func() domain.ScoutID) {
	s.newScoutID = fn
}

// ListScouts returns every scout ordered by name.
func (s *Service) ListScouts(ctx context.Context) ([]domain.Scout, error) {
	ss, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Scout, 0, len(ss))
	for _, sc := range ss {
		out = append(out, toDomain(sc))
	}
	return out, nil
}

func (s *Service) GetScout(ctx context.Context, id domain.ScoutID) (domain.Scout, error) {
	sc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, scoutrepo.ErrNotFound) {
			return domain.Scout{}, notFound()
		}
		return domain.Scout{}, err
	}
	return toDomain(sc), nil
}

// AddScout validates the form and inserts a new scout stamped with the current time.
func (s *Service) AddScout(ctx context.Context, in ScoutForm) (domain.Scout, error) {
	fields, err := fieldsFromForm(in)
	if err != nil {
		return domain.Scout{}, err
	}
	fields.ID = s.newScoutID()
	fields.CreatedAt = s.clk.Now()
	if err := s.repo.Create(ctx, fields); err != nil {
		return domain.Scout{}, err
	}
	return toDomain(fields), nil
}

// UpdateScout replaces every editable field of the scout with id.
func (s *Service) UpdateScout(ctx context.Context, id domain.ScoutID, in ScoutForm) (domain.Scout, error) {
	fields, err := fieldsFromForm(in)
	if err != nil {
		return domain.Scout{}, err
	}
	fields.ID = id
	if err := s.repo.Update(ctx, fields); err != nil {
		if errors.Is(err, scoutrepo.ErrNotFound) {
			return domain.Scout{}, notFound()
		}
		return domain.Scout{}, err
	}
	return s.GetScout(ctx, id)
}

// PatchScout applies only the specified fields.
func (s *Service) PatchScout(ctx context.Context, id domain.ScoutID, in ScoutPatch) (domain.Scout, error) {
	if in.Name.IsSpecified() {
		if in.Name.IsNull() {
			return domain.Scout{}, invalid("name", "Scout name is required", "cannot be null")
		}
		if domain.NormalizeHumanName(in.Name.Value()) == "" {
			return domain.Scout{}, invalid("name", "Scout name is required", "must be non-empty")
		}
	}
	var age *int
	if in.Age.IsSpecified() && !in.Age.IsNull() {
		v, err := parseAge(in.Age.Value())
		if err != nil {
			return domain.Scout{}, err
		}
		age = v
	}
	var email *string
	if in.Email.IsSpecified() && !in.Email.IsNull() {
		v, err := parseEmail(in.Email.Value())
		if err != nil {
			return domain.Scout{}, err
		}
		email = v
	}

	sc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, scoutrepo.ErrNotFound) {
			return domain.Scout{}, notFound()
		}
		return domain.Scout{}, err
	}
	if in.Name.IsSpecified() {
		sc.Name = domain.NormalizeHumanName(in.Name.Value())
	}
	if in.Troop.IsSpecified() {
		sc.Troop = nil
		if !in.Troop.IsNull() {
			sc.Troop = domain.OptionalText(in.Troop.Value())
		}
	}
	if in.Age.IsSpecified() {
		sc.Age = age
	}
	if in.Email.IsSpecified() {
		sc.Email = email
	}

	if err := s.repo.Update(ctx, sc); err != nil {
		if errors.Is(err, scoutrepo.ErrNotFound) {
			return domain.Scout{}, notFound()
		}
		return domain.Scout{}, err
	}
	return toDomain(sc), nil
}

func (s *Service) DeleteScout(ctx context.Context, id domain.ScoutID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, scoutrepo.ErrNotFound) {
			return notFound()
		}
		return err
	}
	return nil
}

func fieldsFromForm(in ScoutForm) (scoutrepo.Scout, error) {
	name := domain.NormalizeHumanName(in.Name)
	if name == "" {
		return scoutrepo.Scout{}, invalid("name", "Scout name is required", "must be non-empty")
	}
	age, err := parseAge(in.Age)
	if err != nil {
		return scoutrepo.Scout{}, err
	}
	email, err := parseEmail(in.Email)
	if err != nil {
		return scoutrepo.Scout{}, err
	}
	return scoutrepo.Scout{
		Name:  name,
		Troop: domain.OptionalText(in.Troop),
		Age:   age,
		Email: email,
	}, nil
}

func parseAge(raw string) (*int, error) {
	age, err := domain.ParseOptionalAge(raw)
	if err != nil {
		return nil, invalid("age", "Age must be a whole number", "must be an integer")
	}
	return age, nil
}

func parseEmail(raw string) (*string, error) {
	email := domain.OptionalText(raw)
	if email == nil {
		return nil, nil
	}
	if err := validateEmail(*email); err != nil {
		return nil, invalid("email", "Email address is invalid", err.Error())
	}
	return email, nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("must be a valid email address")
	}
	// Reject "Name <email@x>" forms.
	if !strings.EqualFold(addr.Address, email) {
		return errors.New("must be a bare email address")
	}
	// Stored addresses must also pass the API's email format.
	wire := openapi_types.Email(email)
	if _, err := json.Marshal(&wire); err != nil {
		return errors.New("must be a valid email address")
	}
	return nil
}

func toDomain(s scoutrepo.Scout) domain.Scout {
	return domain.Scout{
		ID:        s.ID,
		Name:      s.Name,
		Troop:     cloneStringPtr(s.Troop),
		Age:       cloneIntPtr(s.Age),
		Email:     cloneStringPtr(s.Email),
		CreatedAt: s.CreatedAt,
	}
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
