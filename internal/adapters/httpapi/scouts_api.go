package httpapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/scoutbook-labs/badge-tracker/internal/app/roster"
	"github.com/scoutbook-labs/badge-tracker/internal/domain"
	"github.com/scoutbook-labs/badge-tracker/internal/ports/out/idempotency"
)

const maxAPIBodyBytes = 1 << 20

type scoutDTO struct {
	ID        string                                 `json:"id"`
	Name      string                                 `json:"name"`
	Troop     nullable.Nullable[string]              `json:"troop"`
	Age       nullable.Nullable[int]                 `json:"age"`
	Email     nullable.Nullable[openapi_types.Email] `json:"email"`
	CreatedAt time.Time                              `json:"createdAt"`
}

type listScoutsResponse struct {
	Scouts []scoutDTO `json:"scouts"`
	Count  int        `json:"count"`
}

type scoutResponse struct {
	Scout scoutDTO `json:"scout"`
}

// ageInput accepts a JSON number or a numeric string.
type ageInput string

func (a *ageInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = ageInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("age must be a number or a string")
	}
	*a = ageInput(n.String())
	return nil
}

type createScoutRequest struct {
	Name  string                      `json:"name"`
	Troop nullable.Nullable[string]   `json:"troop,omitempty"`
	Age   nullable.Nullable[ageInput] `json:"age,omitempty"`
	Email nullable.Nullable[string]   `json:"email,omitempty"`
}

type patchScoutRequest struct {
	Name  nullable.Nullable[string]   `json:"name,omitempty"`
	Troop nullable.Nullable[string]   `json:"troop,omitempty"`
	Age   nullable.Nullable[ageInput] `json:"age,omitempty"`
	Email nullable.Nullable[string]   `json:"email,omitempty"`
}

func (s *Server) handleAPIListScouts(w http.ResponseWriter, r *http.Request) {
	ss, err := s.scouts.ListScouts(r.Context())
	if err != nil {
		s.writeAPIFailure(w, r, "list", err)
		return
	}
	out := listScoutsResponse{Scouts: make([]scoutDTO, 0, len(ss)), Count: len(ss)}
	for _, sc := range ss {
		out.Scouts = append(out.Scouts, toScoutDTO(sc))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIGetScout(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scouts.GetScout(r.Context(), scoutIDParam(r))
	if err != nil {
		s.writeAPIFailure(w, r, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, scoutResponse{Scout: toScoutDTO(sc)})
}

func (s *Server) handleAPICreateScout(w http.ResponseWriter, r *http.Request) {
	var req createScoutRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	// Idempotency handling:
	// - Replay if same subject+key+route+bodyHash
	// - Reject if same subject+key+route with different bodyHash (409)
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	var respFP idempotency.Fingerprint
	if key != "" && s.idem != nil {
		sub, _ := SubjectFromContext(r.Context())
		bodyHash, err := hashCreateScoutBody(req)
		if err != nil {
			writeAPIError(w, r, http.StatusBadRequest, codeBadRequest, "invalid request body", nil)
			return
		}
		metaFP := idempotency.Fingerprint{
			Key:      idempotency.Key(key),
			Subject:  sub,
			Method:   http.MethodPost,
			Route:    "/api/v1/scouts",
			BodyHash: "",
		}
		meta, ok, err := s.idem.Get(r.Context(), metaFP)
		if err != nil {
			s.writeAPIFailure(w, r, "create", err)
			return
		}
		if ok {
			if string(meta.Body) != bodyHash {
				writeAPIError(w, r, http.StatusConflict, codeIdempotencyKeyReuse, "idempotency key reuse with different payload", nil)
				return
			}
		} else {
			_ = s.idem.Put(r.Context(), metaFP, idempotency.Record{
				StatusCode:  0,
				ContentType: "text/plain",
				Body:        []byte(bodyHash),
				CreatedAt:   s.clock.Now().UTC(),
			})
		}

		respFP = metaFP
		respFP.BodyHash = bodyHash
		rec, ok, err := s.idem.Get(r.Context(), respFP)
		if err != nil {
			s.writeAPIFailure(w, r, "create", err)
			return
		}
		if ok && rec.StatusCode == http.StatusCreated && strings.HasPrefix(rec.ContentType, "application/json") {
			w.Header().Set("Content-Type", rec.ContentType)
			w.Header().Set("Idempotent-Replay", "true")
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.Body)
			return
		}
	}

	created, err := s.scouts.AddScout(r.Context(), roster.ScoutForm{
		Name:  req.Name,
		Troop: textFromNullable(req.Troop),
		Age:   string(valueFromNullable(req.Age)),
		Email: textFromNullable(req.Email),
	})
	if err != nil {
		s.writeAPIFailure(w, r, "create", err)
		return
	}

	body, err := json.Marshal(scoutResponse{Scout: toScoutDTO(created)})
	if err != nil {
		s.writeAPIFailure(w, r, "create", err)
		return
	}
	if respFP.Key != "" {
		_ = s.idem.Put(r.Context(), respFP, idempotency.Record{
			StatusCode:  http.StatusCreated,
			ContentType: "application/json",
			Body:        body,
			CreatedAt:   s.clock.Now().UTC(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/api/v1/scouts/"+string(created.ID))
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func (s *Server) handleAPIPatchScout(w http.ResponseWriter, r *http.Request) {
	var req patchScoutRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	patch := roster.ScoutPatch{
		Name:  optionalStringFromNullable(req.Name),
		Troop: optionalStringFromNullable(req.Troop),
		Email: optionalStringFromNullable(req.Email),
	}
	switch {
	case !req.Age.IsSpecified():
		patch.Age = roster.Unspecified[string]()
	case req.Age.IsNull():
		patch.Age = roster.Null[string]()
	default:
		patch.Age = roster.Some(string(valueFromNullable(req.Age)))
	}

	sc, err := s.scouts.PatchScout(r.Context(), scoutIDParam(r), patch)
	if err != nil {
		s.writeAPIFailure(w, r, "patch", err)
		return
	}
	writeJSON(w, http.StatusOK, scoutResponse{Scout: toScoutDTO(sc)})
}

func (s *Server) handleAPIDeleteScout(w http.ResponseWriter, r *http.Request) {
	if err := s.scouts.DeleteScout(r.Context(), scoutIDParam(r)); err != nil {
		s.writeAPIFailure(w, r, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeAPIFailure logs backend failures before mapping err to the error envelope.
func (s *Server) writeAPIFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ae *roster.Error
	if !errors.As(err, &ae) {
		s.log.ErrorContext(r.Context(), "roster backend call failed", "op", op, "err", err)
	}
	writeAppError(w, r, err)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAPIBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, codeBadRequest, "invalid JSON body", map[string]any{"reason": err.Error()})
		return false
	}
	return true
}

func toScoutDTO(sc domain.Scout) scoutDTO {
	out := scoutDTO{
		ID:        string(sc.ID),
		Name:      sc.Name,
		Troop:     nullableString(sc.Troop),
		Age:       nullableInt(sc.Age),
		CreatedAt: sc.CreatedAt.UTC(),
	}
	if sc.Email != nil {
		out.Email = nullable.NewNullableWithValue(openapi_types.Email(*sc.Email))
	} else {
		out.Email.SetNull()
	}
	return out
}

func nullableString(p *string) nullable.Nullable[string] {
	var out nullable.Nullable[string]
	if p == nil {
		out.SetNull()
		return out
	}
	out.Set(*p)
	return out
}

func nullableInt(p *int) nullable.Nullable[int] {
	var out nullable.Nullable[int]
	if p == nil {
		out.SetNull()
		return out
	}
	out.Set(*p)
	return out
}

func optionalStringFromNullable(n nullable.Nullable[string]) roster.Optional[string] {
	if !n.IsSpecified() {
		return roster.Unspecified[string]()
	}
	if n.IsNull() {
		return roster.Null[string]()
	}
	v, err := n.Get()
	if err != nil {
		return roster.Null[string]()
	}
	return roster.Some(v)
}

func valueFromNullable[T any](n nullable.Nullable[T]) T {
	var zero T
	if !n.IsSpecified() || n.IsNull() {
		return zero
	}
	v, err := n.Get()
	if err != nil {
		return zero
	}
	return v
}

func textFromNullable(n nullable.Nullable[string]) string {
	return valueFromNullable(n)
}

func hashCreateScoutBody(b createScoutRequest) (string, error) {
	canon := b
	canon.Name = domain.NormalizeHumanName(canon.Name)
	raw, err := json.Marshal(canon)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
