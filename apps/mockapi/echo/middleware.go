package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/eduportal/core/school"
)

const contextUserKey = "user"

// roleMiddleware admits requests whose role and user_id headers name an existing user holding role.
// Anything else is answered with a bare-text 403.
func roleMiddleware(svc *school.Service, role school.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			hdr := ctx.Request().Header
			if hdr.Get("role") != role.String() {
				return ctx.String(http.StatusForbidden, accessDenied)
			}
			id, err := strconv.Atoi(hdr.Get("user_id"))
			if err != nil {
				return ctx.String(http.StatusForbidden, accessDenied)
			}
			usr, err := svc.GetUser(id)
			if err != nil || usr.Role != role {
				return ctx.String(http.StatusForbidden, accessDenied)
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

// ownerMiddleware admits requests on /students/:id made by that same student.
func ownerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := pathID(ctx)
		if err != nil {
			return err
		}
		if contextUser(ctx).ID != id {
			return ctx.String(http.StatusForbidden, accessDenied)
		}
		return next(ctx)
	}
}

func contextUser(ctx echo.Context) school.User {
	usr, _ := ctx.Get(contextUserKey).(school.User)
	return usr
}

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

func queryID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.QueryParam(name))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
