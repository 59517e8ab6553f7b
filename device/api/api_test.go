package api

import (
	"net/http"
	"testing"

	"github.com/jackin-rest/jackin/device"
	"github.com/julienschmidt/httprouter"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

func TestDeviceEnumeration(t *testing.T) {
	handler := testHandler()

	apitest.Handler(handler).Get("/device").
		Expect(t).
		Status(http.StatusOK).
		Header("Content-Type", "application/json; charset=utf-8").
		Body(`["/v1/device/1"]`).
		End()

	// routes answer unversioned, the rendered URLs carry the /v1 prefix
	apitest.Handler(handler).Get("/device/1").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$[0].base_url`, "/v1/device/1/1")).
		Assert(jsonpath.Equal(`$[0].power`, 5.0)).
		Assert(jsonpath.Equal(`$[2].ground`, true)).
		Assert(jsonpath.Equal(`$[3].base_url`, "/v1/device/1/4")).
		Assert(jsonpath.Equal(`$[3].set_mode`, "/v1/device/1/4/mode")).
		Assert(jsonpath.Equal(`$[3].value`, "/v1/device/1/4/value")).
		Assert(jsonpath.Equal(`$[3].pullup`, "/v1/device/1/4/pullup")).
		Assert(jsonpath.Equal(`$[3].cur_mode`, "read")).
		Assert(jsonpath.Equal(`$[3].cur_value`, false)).
		Assert(jsonpath.Equal(`$[3].cur_pullup`, "floating")).
		End()

	apitest.Handler(handler).Get("/device/9").
		Expect(t).Status(http.StatusNotFound).End()
	apitest.Handler(handler).Get("/device/1/42/mode").
		Expect(t).Status(http.StatusNotFound).End()
}

func TestPinControl(t *testing.T) {
	handler := testHandler()

	apitest.Handler(handler).Get("/device/1/4/mode").
		Expect(t).Status(http.StatusOK).
		Body(`{"mode":"read"}`).
		End()
	apitest.Handler(handler).Put("/device/1/4/mode").
		Body(`{"mode":"write"}`).
		Expect(t).Status(http.StatusOK).
		Body(`{"mode":"write"}`).
		End()
	apitest.Handler(handler).Get("/device/1/4/mode").
		Expect(t).Status(http.StatusOK).
		Body(`{"mode":"write"}`).
		End()

	apitest.Handler(handler).Get("/device/1/4/value").
		Expect(t).Status(http.StatusOK).
		Body(`{"value":false}`).
		End()
	apitest.Handler(handler).Put("/device/1/4/value").
		Body(`{"value":true}`).
		Expect(t).Status(http.StatusOK).
		Body(`{"value":true}`).
		End()

	apitest.Handler(handler).Put("/device/1/4/pullup").
		Body(`{"pullup":"up"}`).
		Expect(t).Status(http.StatusOK).
		Body(`{"pullup":"up"}`).
		End()
	apitest.Handler(handler).Put("/device/1/4/pullup").
		Body(`{"pullup":"sideways"}`).
		Expect(t).Status(http.StatusBadRequest).End()

	// power pins are fixed by the hardware
	apitest.Handler(handler).Put("/device/1/1/mode").
		Body(`{"mode":"write"}`).
		Expect(t).Status(http.StatusBadRequest).End()
}

func testHandler() http.Handler {
	hub := device.NewHub()
	hub.Load(1, device.MockBoard())
	router := httprouter.New()
	Routes(router, hub)
	return router
}
