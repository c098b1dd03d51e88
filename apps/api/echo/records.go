package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/alihaimran285-byte/final-project-sub001/core/school"
)

type recordsApi struct {
	svc *school.Service
}

// registerRecordsAPI mounts /<collection>, /<collection>/:id for every record kind.
func registerRecordsAPI(g *echo.Group, write echo.MiddlewareFunc, svc *school.Service) {
	api := recordsApi{svc: svc}
	for _, kind := range school.Kinds {
		kg := g.Group("/" + kind.Collection())
		kg.GET("", api.query(kind))
		kg.POST("", api.create(kind), write)
		kg.GET("/:id", api.retrieve(kind))
	}
}

func (api recordsApi) query(kind school.Kind) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var ord Ordering
		ord.Bind(ctx)

		records, err := api.svc.List(ctx.Request().Context(), kind, ord.Orderings...)
		if err != nil {
			return errors.Wrapf(err, "querying %s", kind.Collection())
		}
		return ctx.JSON(http.StatusOK, records)
	}
}

func (api recordsApi) create(kind school.Kind) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var data map[string]interface{}
		if err := ctx.Bind(&data); err != nil {
			return err
		}

		rec, err := api.svc.Create(ctx.Request().Context(), kind, data)
		if err != nil {
			return errors.Wrapf(err, "creating %s", kind)
		}
		return ctx.JSON(http.StatusCreated, rec)
	}
}

func (api recordsApi) retrieve(kind school.Kind) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		rec, err := api.svc.GetByID(ctx.Request().Context(), kind, ctx.Param("id"))
		if err != nil {
			return errors.Wrapf(err, "finding %s by ID", kind)
		}
		return ctx.JSON(http.StatusOK, rec)
	}
}
