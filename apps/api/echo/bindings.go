package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/alihaimran285-byte/final-project-sub001/core"
)

var orderingParam = "ordering"

// Ordering binds "?ordering=-createdAt,name" to DBOrderings.
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}
	for _, field := range strings.Split(val, ",") {
		if o, ok := core.ParseOrdering(field); ok {
			ord.Orderings = append(ord.Orderings, o)
		}
	}
}
