// Package api maps the pin boards onto the REST surface. Every route
// here is protected, the gatekeeper runs before any of these handlers.
//
// Rendered URLs carry the /v1 prefix clients are expected to use, even
// though the routes themselves are registered unversioned.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jackin-rest/jackin/device"
	"github.com/julienschmidt/httprouter"
)

type (
	pinView struct {
		BaseURL   string        `json:"base_url"`
		Power     *float64      `json:"power,omitempty"`
		Ground    bool          `json:"ground,omitempty"`
		SetMode   string        `json:"set_mode,omitempty"`
		ValueURL  string        `json:"value,omitempty"`
		PullupURL string        `json:"pullup,omitempty"`
		CurMode   device.Mode   `json:"cur_mode,omitempty"`
		CurValue  *bool         `json:"cur_value,omitempty"`
		CurPullup device.Pullup `json:"cur_pullup,omitempty"`
	}
)

// Routes registers the device enumeration and pin control endpoints.
func Routes(router *httprouter.Router, hub *device.Hub) {
	router.GET("/device", listBoards(hub))
	router.GET("/device/:id", listPins(hub))
	router.GET("/device/:id/:pin/mode", readPin(hub, pinMode))
	router.PUT("/device/:id/:pin/mode", writeMode(hub))
	router.GET("/device/:id/:pin/value", readPin(hub, pinValue))
	router.PUT("/device/:id/:pin/value", writeValue(hub))
	router.GET("/device/:id/:pin/pullup", readPin(hub, pinPullup))
	router.PUT("/device/:id/:pin/pullup", writePullup(hub))
}

func listBoards(hub *device.Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		urls := []string{}
		for _, id := range hub.List() {
			urls = append(urls, fmt.Sprintf("/v1/device/%v", id))
		}
		writeJSON(w, urls)
	}
}

func listPins(hub *device.Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, board := lookupBoard(w, hub, ps)
		if board == nil {
			return
		}
		views := []pinView{}
		for _, pin := range board.Pins() {
			views = append(views, viewOf(id, pin))
		}
		writeJSON(w, views)
	}
}

func viewOf(boardID int, pin *device.Pin) pinView {
	base := fmt.Sprintf("/v1/device/%v/%v", boardID, pin.Number())
	view := pinView{BaseURL: base}
	if volts, ok := pin.Volts(); ok {
		view.Power = &volts
		return view
	}
	if pin.IsGround() {
		view.Ground = true
		return view
	}
	value := pin.Value()
	view.SetMode = base + "/mode"
	view.ValueURL = base + "/value"
	view.PullupURL = base + "/pullup"
	view.CurMode = pin.Mode()
	view.CurValue = &value
	view.CurPullup = pin.Pullup()
	return view
}

func pinMode(pin *device.Pin) interface{} {
	return map[string]device.Mode{"mode": pin.Mode()}
}

func pinValue(pin *device.Pin) interface{} {
	return map[string]bool{"value": pin.Value()}
}

func pinPullup(pin *device.Pin) interface{} {
	return map[string]device.Pullup{"pullup": pin.Pullup()}
}

func readPin(hub *device.Hub, view func(*device.Pin) interface{}) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		pin := lookupPin(w, hub, ps)
		if pin == nil {
			return
		}
		writeJSON(w, view(pin))
	}
}

func writeMode(hub *device.Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		pin := lookupPin(w, hub, ps)
		if pin == nil {
			return
		}
		var body struct {
			Mode device.Mode `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}
		if err := pin.SetMode(body.Mode); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, pinMode(pin))
	}
}

func writeValue(hub *device.Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		pin := lookupPin(w, hub, ps)
		if pin == nil {
			return
		}
		var body struct {
			Value bool `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}
		if err := pin.SetValue(body.Value); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, pinValue(pin))
	}
}

func writePullup(hub *device.Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		pin := lookupPin(w, hub, ps)
		if pin == nil {
			return
		}
		var body struct {
			Pullup device.Pullup `json:"pullup"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}
		if err := pin.SetPullup(body.Pullup); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, pinPullup(pin))
	}
}

func lookupBoard(w http.ResponseWriter, hub *device.Hub, ps httprouter.Params) (int, *device.Board) {
	id, err := strconv.Atoi(ps.ByName("id"))
	if err != nil {
		http.Error(w, "no such device", http.StatusNotFound)
		return 0, nil
	}
	board := hub.Get(id)
	if board == nil {
		http.Error(w, "no such device", http.StatusNotFound)
		return 0, nil
	}
	return id, board
}

func lookupPin(w http.ResponseWriter, hub *device.Hub, ps httprouter.Params) *device.Pin {
	_, board := lookupBoard(w, hub, ps)
	if board == nil {
		return nil
	}
	number, err := strconv.Atoi(ps.ByName("pin"))
	if err != nil {
		http.Error(w, "no such pin", http.StatusNotFound)
		return nil
	}
	pin, ok := board.Pin(number)
	if !ok {
		http.Error(w, "no such pin", http.StatusNotFound)
		return nil
	}
	return pin
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(v)
}
