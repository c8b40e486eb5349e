package manager

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/e33config/internal/cfgerr"
	"github.com/ManuGH/e33config/internal/distro"
	"github.com/ManuGH/e33config/internal/fsutil"
)

// Status describes one distribution's settings file.
type Status struct {
	Distribution distro.Distribution `json:"distribution"`
	Label        string              `json:"label"`
	Path         string              `json:"path,omitempty"`
	Placement    string              `json:"placement,omitempty"`
	Exists       bool                `json:"exists"`
	ReadOnly     bool                `json:"readOnly"`
	Backups      int                 `json:"backups"`
	// Code is "ok" or the error code that kept the distribution from being
	// inspected; Error carries the message.
	Code  string `json:"code"`
	Error string `json:"error,omitempty"`
}

// Status inspects every distribution concurrently. A distribution that
// cannot be resolved reports its error instead of failing the call.
func (m *Manager) Status(ctx context.Context) (out []Status, err error) {
	ctx, _, finish := m.begin(ctx, "status", "")
	defer func() { finish(err) }()

	defs := distro.All()
	out = make([]Status, len(defs))
	g, _ := errgroup.WithContext(ctx)
	for i, def := range defs {
		g.Go(func() error {
			out[i] = m.inspect(def)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Manager) inspect(def distro.Definition) Status {
	st := Status{Distribution: def.ID, Label: def.Label}
	fail := func(err error) Status {
		st.Code = cfgerr.Code(err)
		st.Error = err.Error()
		return st
	}

	res, err := m.resolver.Lookup(def.ID)
	if err != nil {
		return fail(err)
	}
	st.Path = res.Path
	st.Placement = string(res.Placement.Strategy())

	if st.Exists, err = fsutil.Exists(res.Path); err != nil {
		return fail(err)
	}
	if st.Exists {
		if st.ReadOnly, err = fsutil.IsReadOnly(res.Path); err != nil {
			return fail(err)
		}
	}
	records, err := m.backups.List(def.ID, res.Path)
	if err != nil {
		return fail(err)
	}
	st.Backups = len(records)
	st.Code = cfgerr.Code(nil)
	return st
}
