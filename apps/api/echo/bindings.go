package echoapi

import (
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
)

var orderingParam = "ordering"

type (
	orderField struct {
		Field     string
		Ascending bool
	}

	// Ordering is the parsed `?ordering=field,-other` query param.
	Ordering struct {
		Fields []orderField
	}

	// lessFuncs are the orderable fields of a resource.
	lessFuncs[T any] map[string]func(a, b T) bool
)

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field != "" {
			ord.Fields = append(ord.Fields, orderField{Field: field, Ascending: !descending})
		}
	}
}

// orderBy sorts items in place by the ordering fields it knows; unknown fields are ignored.
func orderBy[T any](items []T, ord Ordering, less lessFuncs[T]) {
	fields := make([]orderField, 0, len(ord.Fields))
	for _, f := range ord.Fields {
		if _, ok := less[f.Field]; ok {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		for _, f := range fields {
			lt := less[f.Field]
			a, b := items[i], items[j]
			if !f.Ascending {
				a, b = b, a
			}
			if lt(a, b) {
				return true
			}
			if lt(b, a) {
				return false
			}
		}
		return false
	})
}
