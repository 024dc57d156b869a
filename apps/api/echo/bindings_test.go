package echoapi

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/labstack/echo/v4"
)

type item struct {
	name string
	rank int
}

var itemOrdering = lessFuncs[item]{
	"name": func(a, b item) bool { return a.name < b.name },
	"rank": func(a, b item) bool { return a.rank < b.rank },
}

func TestOrdering_Bind(t *testing.T) {
	tests := []struct {
		query string
		want  []orderField
	}{
		{query: "", want: nil},
		{query: "?ordering=name", want: []orderField{{Field: "name", Ascending: true}}},
		{query: "?ordering=-rank,%20name,", want: []orderField{{Field: "rank"}, {Field: "name", Ascending: true}}},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			ctx := e.NewContext(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil), httptest.NewRecorder())
			var ord Ordering
			ord.Bind(ctx)
			if !reflect.DeepEqual(ord.Fields, tt.want) {
				t.Errorf("Bind() = %+v; want %+v", ord.Fields, tt.want)
			}
		})
	}
}

func TestOrderBy(t *testing.T) {
	items := func() []item {
		return []item{{"b", 2}, {"a", 2}, {"c", 1}}
	}
	tests := []struct {
		name   string
		fields []orderField
		want   []item
	}{
		{name: "none", want: items()},
		{name: "unknown field", fields: []orderField{{Field: "color", Ascending: true}}, want: items()},
		{name: "name", fields: []orderField{{Field: "name", Ascending: true}}, want: []item{{"a", 2}, {"b", 2}, {"c", 1}}},
		{
			name:   "-rank,name",
			fields: []orderField{{Field: "rank"}, {Field: "name", Ascending: true}},
			want:   []item{{"a", 2}, {"b", 2}, {"c", 1}},
		},
		{
			name:   "rank,-name",
			fields: []orderField{{Field: "rank", Ascending: true}, {Field: "name"}},
			want:   []item{{"c", 1}, {"b", 2}, {"a", 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := items()
			orderBy(got, Ordering{Fields: tt.fields}, itemOrdering)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("orderBy() = %v; want %v", got, tt.want)
			}
		})
	}
}
