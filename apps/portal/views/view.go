package views

import (
	"context"
	"fmt"
	"io"

	"github.com/labstack/gommon/color"

	"github.com/trezcool/eduportal/core"
	"github.com/trezcool/eduportal/core/school"
	"github.com/trezcool/eduportal/core/session"
	"github.com/trezcool/eduportal/services/api"
)

// Deps are shared by every view.
type Deps struct {
	Client      *api.Client
	Gate        *session.Gate
	Logger      core.Logger
	Out         io.Writer
	AbsentToken string
}

// view is the common part of the role views. Every exported operation mounts first,
// so nothing reaches the network for a session that does not hold the view role.
type view struct {
	deps  Deps
	sess  session.Session
	role  school.Role
	color *color.Color
}

func newView(sess session.Session, role school.Role, deps Deps) view {
	if deps.Logger == nil {
		deps.Logger = core.NopLogger
	}
	clr := color.New()
	clr.SetOutput(deps.Out)
	return view{deps: deps, sess: sess, role: role, color: clr}
}

// Mount runs the role gate. A mismatched session is cleared and session.ErrRedirectLogin returned.
func (v *view) Mount(ctx context.Context) error {
	return v.deps.Gate.Mount(ctx, v.sess, v.role)
}

func (v *view) Session() session.Session {
	return v.sess
}

func (v *view) printf(format string, args ...interface{}) {
	fmt.Fprintf(v.deps.Out, format, args...)
}

// done prints the server message of a successful mutation.
func (v *view) done(msg string) {
	if msg == "" {
		msg = "Done"
	}
	v.printf("%s\n", v.color.Green(msg))
}

// mutate mounts, runs a mutation and prints its outcome.
func (v *view) mutate(ctx context.Context, call func(ctx context.Context) (string, error)) error {
	if err := v.Mount(ctx); err != nil {
		return err
	}
	msg, err := call(ctx)
	if err != nil {
		return err
	}
	v.done(msg)
	return nil
}

// list mounts, fetches a collection and renders it as a table.
func list[T any](ctx context.Context, v *view, fetch func(context.Context) ([]T, error), headers []string, row func(T) []string) ([]T, error) {
	if err := v.Mount(ctx); err != nil {
		return nil, err
	}
	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, row(item))
	}
	renderTable(v.deps.Out, headers, rows)
	return items, nil
}
