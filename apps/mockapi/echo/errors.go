package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/eduportal/core"
	"github.com/trezcool/eduportal/core/school"
)

const accessDenied = "Access denied"

var errInvalidID = echo.NewHTTPError(http.StatusBadRequest, "invalid id")

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// Error bodies are {"error": msg}, with "fields" added for validation errors.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		message := echo.Map{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if msg, ok := origErr.Message.(string); ok {
				message["error"] = msg
			} else {
				message["error"] = http.StatusText(code)
			}
		case *core.ValidationError:
			code = http.StatusBadRequest
			message["error"] = origErr.Error()
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message["fields"] = fldErrs
			}
		default:
			switch origErr {
			case school.ErrNotFound, school.ErrNotInGroup:
				code = http.StatusNotFound
			case school.ErrInvalidLogin:
				code = http.StatusUnauthorized
				message["status"] = "error"
			case school.ErrUnknownLesson:
				code = http.StatusBadRequest
			}
			if code != 0 {
				message["error"] = origErr.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(code)
			message["error"] = msg
			if ctx.Echo().Debug {
				message["error"] = err.Error()
			}
			logger.Error(msg, errors.Wrap(err, msg), map[string]interface{}{
				"path":    ctx.Request().URL.Path,
				"role":    ctx.Request().Header.Get("role"),
				"user_id": ctx.Request().Header.Get("user_id"),
			})
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
