package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/transport"
)

// strictBinder rejects JSON bodies carrying fields the target struct does not declare.
type strictBinder struct {
	echo.DefaultBinder
}

func (b *strictBinder) Bind(i any, c echo.Context) error {
	req := c.Request()
	if req.ContentLength == 0 || !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return b.DefaultBinder.Bind(i, c)
	}

	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(i); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return fmt.Errorf("%w: %v", transport.ErrValidation, err)
		}
		return err
	}
	return nil
}

func bindError(err error) *echo.HTTPError {
	if errors.Is(err, transport.ErrValidation) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body").SetInternal(err)
}
