package apply

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/jonathan/job-applier/internal/filler"
	"github.com/jonathan/job-applier/internal/types"
)

type resolveCall struct {
	key   string
	shape string
	html  string
}

// stubResolver returns per-key schemas, falling back to def.
type stubResolver struct {
	schemas map[string]*types.FormSchema
	def     *types.FormSchema
	errs    map[string]error
	calls   []resolveCall
}

func (r *stubResolver) Resolve(_ context.Context, html, url string, shape types.Shape) (*types.FormSchema, error) {
	r.calls = append(r.calls, resolveCall{key: url, shape: shape.Name, html: html})
	if err := r.errs[url]; err != nil {
		return nil, err
	}
	if s, ok := r.schemas[url]; ok {
		return s.Clone(), nil
	}
	return r.def.Clone(), nil
}

func testDeps(t *testing.T, r *stubResolver) Deps {
	return Deps{
		Resolver: r,
		Filler:   filler.New(zaptest.NewLogger(t)),
		Logger:   zaptest.NewLogger(t),
	}
}

func testProfile() types.ApplicantProfile {
	return types.ApplicantProfile{
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
		Phone:      "+31 6 1234 5678",
		ResumePath: "/docs/cv.pdf",
	}
}

func testJob() types.JobRecord {
	return types.JobRecord{Company: "Acme", Title: "Engineer"}
}
