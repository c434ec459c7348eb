package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/eduportal/core"
	"github.com/trezcool/eduportal/core/school"
)

var (
	// errors
	ErrRedirectLogin = errors.New("session expired or role mismatch, please log in again")
	ErrLoginFailed   = errors.New("login failed")
	ErrMissingUserID = errors.New("login response carries no user id")
)

// UnknownRoleError is returned when the server authenticates a user with a role this client does not know.
type UnknownRoleError struct {
	Role string
}

func (e UnknownRoleError) Error() string {
	return "Unknown role: " + e.Role
}

type (
	// Session is the authenticated context passed explicitly to every view and API call.
	// The zero value is the anonymous session.
	Session struct {
		ID        uuid.UUID   `json:"id"`
		Role      school.Role `json:"role"`
		UserID    string      `json:"user_id"`
		Login     string      `json:"login,omitempty"`
		CreatedAt time.Time   `json:"created_at"` // UTC
	}

	Credentials struct {
		Login    string `json:"login" validate:"required,notblank"`
		Password string `json:"password" validate:"required"`
	}

	// Store persists the current session between invocations.
	// Load returns the anonymous session when nothing is stored.
	Store interface {
		Load(ctx context.Context) (Session, error)
		Save(ctx context.Context, sess Session) error
		Clear(ctx context.Context) error
	}
)

func (s Session) IsAnonymous() bool {
	return s.Role == "" || s.UserID == ""
}

func (s Session) Is(role school.Role) bool {
	return !s.IsAnonymous() && s.Role == role
}

func (s Session) String() string {
	if s.IsAnonymous() {
		return "anonymous"
	}
	if s.Login != "" {
		return fmt.Sprintf("%s #%s (%s)", s.Role, s.UserID, s.Login)
	}
	return fmt.Sprintf("%s #%s", s.Role, s.UserID)
}

// UserIDInt returns the user id as a number, for routes keyed by it.
func (s Session) UserIDInt() (int, error) {
	id, err := strconv.Atoi(s.UserID)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing user id %q", s.UserID)
	}
	return id, nil
}

// ParseLogin establishes a session from a decoded POST /login response.
// The user id is taken from `id`, then `user_id`, then `userId`.
func ParseLogin(body map[string]interface{}, login string) (Session, error) {
	if status, _ := body["status"].(string); status != "success" {
		if msg, _ := body["error"].(string); msg != "" {
			return Session{}, errors.New(msg)
		}
		return Session{}, ErrLoginFailed
	}

	rawRole := fmt.Sprint(body["role"])
	if body["role"] == nil {
		rawRole = ""
	}
	role, ok := school.ParseRole(rawRole)
	if !ok {
		return Session{}, &UnknownRoleError{Role: rawRole}
	}

	var userID string
	for _, key := range []string{"id", "user_id", "userId"} {
		if id, ok := idString(body[key]); ok {
			userID = id
			break
		}
	}
	if userID == "" {
		return Session{}, ErrMissingUserID
	}

	return Session{
		ID:        uuid.New(),
		Role:      role,
		UserID:    userID,
		Login:     login,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func idString(v interface{}) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case json.Number:
		return id.String(), true
	case int:
		return strconv.Itoa(id), true
	}
	return "", false
}

// Logout clears every stored session field.
func Logout(ctx context.Context, store Store) error {
	if err := store.Clear(ctx); err != nil {
		return errors.Wrap(err, "clearing session")
	}
	return nil
}

// Authenticator posts credentials to the server and returns the decoded response body.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (map[string]interface{}, error)
}

// Login validates creds locally, authenticates them and establishes a new session.
// Nothing is sent when validation fails.
func Login(ctx context.Context, auth Authenticator, validate *core.Validator, creds Credentials) (Session, error) {
	creds.Login = core.CleanString(creds.Login)
	if err := validate.Struct(creds); err != nil {
		return Session{}, err
	}
	body, err := auth.Authenticate(ctx, creds)
	if err != nil {
		return Session{}, err
	}
	return ParseLogin(body, creds.Login)
}
