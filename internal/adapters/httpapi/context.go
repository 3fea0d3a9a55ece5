package httpapi

import (
	"context"

	"github.com/scoutbook-labs/badge-tracker/internal/domain"
)

type subjectKey struct{}

func WithSubject(ctx context.Context, subjectID domain.SubjectID) context.Context {
	return context.WithValue(ctx, subjectKey{}, subjectID)
}

func SubjectFromContext(ctx context.Context) (domain.SubjectID, bool) {
	v, ok := ctx.Value(subjectKey{}).(domain.SubjectID)
	return v, ok && v != ""
}
