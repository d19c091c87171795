package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jrsteele09/smartrent-bridge/accessories"
	"github.com/jrsteele09/smartrent-bridge/internal/errors"
)

const maxValueBodyBytes = 4 << 10

// AccessoryView is the JSON form of an accessory.
type AccessoryView struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Kind            string   `json:"kind"`
	Serial          string   `json:"serial"`
	DeviceID        int      `json:"deviceId"`
	HubID           int      `json:"hubId"`
	Online          bool     `json:"online"`
	BatteryLevel    *int     `json:"batteryLevel,omitempty"`
	Characteristics []string `json:"characteristics"`
}

// CharacteristicValue is the body of characteristic reads and writes.
type CharacteristicValue struct {
	Value int `json:"value"`
}

func newAccessoryView(a accessories.Accessory) AccessoryView {
	return AccessoryView{
		ID:              a.ID.String(),
		Name:            a.Name,
		Kind:            string(a.Kind),
		Serial:          a.Serial,
		DeviceID:        a.Device.ID,
		HubID:           a.Device.HubID(),
		Online:          a.Device.Online,
		BatteryLevel:    a.Device.BatteryLevel,
		Characteristics: a.Characteristics(),
	}
}

func (s *Server) ListAccessoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := s.accessories.List()
		views := make([]AccessoryView, 0, len(list))
		for _, a := range list {
			views = append(views, newAccessoryView(a))
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func (s *Server) DiscoverAccessoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.accessories.Reconcile(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) GetAccessoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.accessoryID(w, r)
		if !ok {
			return
		}
		a, err := s.accessories.Get(id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newAccessoryView(a))
	}
}

func (s *Server) GetCharacteristicHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.accessoryID(w, r)
		if !ok {
			return
		}
		value, err := s.accessories.GetValue(r.Context(), id, r.PathValue("name"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, CharacteristicValue{Value: value})
	}
}

func (s *Server) SetCharacteristicHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.accessoryID(w, r)
		if !ok {
			return
		}
		var body CharacteristicValue
		if err := json.NewDecoder(io.LimitReader(r.Body, maxValueBodyBytes)).Decode(&body); err != nil {
			writeCode(w, http.StatusBadRequest, "Invalid characteristic value")
			return
		}
		if err := s.accessories.SetValue(r.Context(), id, r.PathValue("name"), body.Value); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) accessoryID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeCode(w, http.StatusBadRequest, "Invalid accessory id")
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps bridge errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errors.ErrAccessoryNotFound), errors.Is(err, errors.ErrUnsupportedDevice):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrReadOnly):
		status = http.StatusMethodNotAllowed
	case errors.Is(err, errors.ErrMissingCredentials),
		errors.Is(err, errors.ErrMissingTwoFactorCode),
		errors.Is(err, errors.ErrInvalidCredentials),
		errors.Is(err, errors.ErrInvalidTwoFactorCode):
		status = http.StatusUnauthorized
	case errors.Is(err, errors.ErrUnitNotFound), errors.Is(err, errors.ErrNoHub):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrRequestFailed),
		errors.Is(err, errors.ErrTransport),
		errors.Is(err, errors.ErrMalformedResponse):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("request_id", RequestID(r.Context())).Msg("Request failed")
	}
	writeJSON(w, status, codeResponse{Code: status, Message: http.StatusText(status), Error: err.Error()})
}
