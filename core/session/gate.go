package session

import (
	"context"

	"github.com/trezcool/eduportal/core"
	"github.com/trezcool/eduportal/core/school"
)

// Gate verifies a session against the role a view requires before the view issues any call.
type Gate struct {
	store  Store
	logger core.Logger
}

func NewGate(store Store, logger core.Logger) *Gate {
	if logger == nil {
		logger = core.NopLogger
	}
	return &Gate{store: store, logger: logger}
}

// Mount returns nil when sess holds the required role.
// On mismatch the stored session is cleared and ErrRedirectLogin is returned.
func (g *Gate) Mount(ctx context.Context, sess Session, required school.Role) error {
	if sess.Is(required) {
		return nil
	}
	g.logger.Warn("role gate: " + sess.String() + " cannot open a " + required.String() + " view")
	if err := Logout(ctx, g.store); err != nil {
		g.logger.Error("role gate: clearing session", err)
	}
	return ErrRedirectLogin
}
