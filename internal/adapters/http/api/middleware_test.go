package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/stemmap/internal/adapters/render/chart"
	service "github.com/okian/stemmap/internal/app"
	"github.com/okian/stemmap/internal/domain/dashboard"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a wrapped handler", t, func() {
		h := MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		}, "teapot")

		w := httptest.NewRecorder()
		h(w, httptest.NewRequest("GET", "/teapot", http.NoBody))

		Convey("Then the response passes through", func() {
			So(w.Code, ShouldEqual, http.StatusTeapot)
			So(w.Body.String(), ShouldEqual, "short and stout")
		})
	})

	Convey("Given HTTP status codes", t, func() {
		So(getErrorType(503), ShouldEqual, "data_unavailable")
		So(getErrorType(500), ShouldEqual, "server_error")
		So(getErrorType(404), ShouldEqual, "not_found")
		So(getErrorType(429), ShouldEqual, "rate_limit")
		So(getErrorType(400), ShouldEqual, "client_error")
		So(getErrorSeverity(503), ShouldEqual, "critical")
		So(getErrorSeverity(404), ShouldEqual, "medium")
		So(getErrorSeverity(200), ShouldEqual, "low")
	})
}

func TestStatusOf(t *testing.T) {
	Convey("Given errors of each kind", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{Wrap("op", service.ErrDataUnavailable), http.StatusServiceUnavailable, "data_unavailable"},
			{Wrap("op", service.ErrNoShapes), http.StatusNotFound, "not_found"},
			{Wrap("op", chart.ErrUnknownChart), http.StatusNotFound, "not_found"},
			{NewKind("op", ErrNotFound), http.StatusNotFound, "not_found"},
			{NewKind("op", ErrBadRequest), http.StatusBadRequest, "bad_request"},
			{Wrap("op", dashboard.ErrUnknownControl), http.StatusBadRequest, "bad_request"},
			{WrapKind("op", ErrRender, errors.New("disk full")), http.StatusInternalServerError, "internal_error"},
		}

		for _, tc := range cases {
			status, code := statusOf(tc.err)
			So(status, ShouldEqual, tc.status)
			So(code, ShouldEqual, tc.code)
		}
	})

	Convey("Given a WrapKind error", t, func() {
		cause := errors.New("disk full")
		err := WrapKind("api.export", ErrRender, cause)

		So(errors.Is(err, ErrRender), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "api.export: render failed: disk full")
	})
}
