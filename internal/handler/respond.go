package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/startera/internal/middleware"
)

// statusRule maps one error class to a response.
type statusRule struct {
	target  error
	status  int
	message string
}

// respondError writes the first rule matching err, or a generic 500.
func respondError(c echo.Context, err error, rules ...statusRule) error {
	for _, r := range rules {
		if errors.Is(err, r.target) {
			return c.JSON(r.status, echo.Map{"error": r.message})
		}
	}
	c.Set(middleware.ContextError, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// flexString accepts a JSON string or number, so clients may send
// "capital": 50000 as well as "capital": "50000".
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string { return strings.TrimSpace(string(f)) }
