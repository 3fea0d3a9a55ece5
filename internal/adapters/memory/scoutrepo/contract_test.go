package scoutrepo

import (
	"testing"

	"github.com/scoutbook-labs/badge-tracker/internal/adapters/contracttest"
	scoutrepoport "github.com/scoutbook-labs/badge-tracker/internal/ports/out/scoutrepo"
)

func TestContract_ScoutRepo(t *testing.T) {
	contracttest.RunScoutRepo(t, func(t *testing.T) (scoutrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
