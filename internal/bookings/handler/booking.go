package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/phanendrananabala-lab/hotel-room-booking-system/internal/bookings/service"
	apperrors "github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/errors"
	httputil "github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/http"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/logger"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(svc service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: svc,
		log:     log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.PUT("/api/v1/bookings/:bookingid", h.Update)
	router.DELETE("/api/v1/bookings/:bookingid", h.Delete)
	router.GET("/api/v1/bookings/room/:roomid", h.SearchByRoom)
	router.GET("/api/v1/bookings/user/:userid", h.SearchByUser)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// Decoding into a pointer keeps a literal "null" body distinguishable
	// from an empty booking; the service rejects the nil payload.
	var booking *model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		h.writeError(w, r, apperrors.InvalidInput("Invalid or missing booking data"))
		return
	}

	bookingID, err := h.service.Create(r.Context(), booking)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, httputil.MessageResponse{
		Message:   "Booking created",
		BookingID: bookingID,
	})
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := strings.TrimSpace(ps.ByName("bookingid"))
	if bookingID == "" {
		h.writeError(w, r, apperrors.InvalidInput("Missing bookingid"))
		return
	}

	var update *model.BookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, r, apperrors.InvalidInput("Invalid or missing booking data"))
		return
	}

	if err := h.service.Update(r.Context(), bookingID, update); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeMessage(w, r, "Booking updated successfully")
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := strings.TrimSpace(ps.ByName("bookingid"))
	if bookingID == "" {
		h.writeError(w, r, apperrors.InvalidInput("Missing bookingid"))
		return
	}

	if err := h.service.Delete(r.Context(), bookingID); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeMessage(w, r, "Booking soft-deleted")
}

func (h *BookingHandler) SearchByRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := strings.TrimSpace(ps.ByName("roomid"))
	if roomID == "" {
		h.writeError(w, r, apperrors.InvalidInput("Missing roomid in path"))
		return
	}

	bookings, err := h.service.FindByRoom(r.Context(), roomID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Search responses are a bare array of records, no envelope.
	h.writeSuccess(w, r, bookings)
}

func (h *BookingHandler) SearchByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := strings.TrimSpace(ps.ByName("userid"))
	if userID == "" {
		h.writeError(w, r, apperrors.InvalidInput("Missing userid in path"))
		return
	}

	bookings, err := h.service.FindByUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeSuccess(w, r, bookings)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() >= http.StatusInternalServerError {
		h.log.Error("Request failed",
			"path", r.URL.Path,
			"method", r.Method,
			"error", appErr,
		)
	}
	if writeErr := httputil.WriteError(w, appErr); writeErr != nil {
		h.log.Error("failed to write JSON response", "path", r.URL.Path, "error", writeErr)
	}
}

func (h *BookingHandler) writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	if err := httputil.WriteJSON(w, statusCode, data); err != nil {
		h.log.Error("failed to write JSON response", "path", r.URL.Path, "error", err)
	}
}

func (h *BookingHandler) writeMessage(w http.ResponseWriter, r *http.Request, message string) {
	if err := httputil.WriteMessage(w, message); err != nil {
		h.log.Error("failed to write JSON response", "path", r.URL.Path, "error", err)
	}
}

func (h *BookingHandler) writeSuccess(w http.ResponseWriter, r *http.Request, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write JSON response", "path", r.URL.Path, "error", err)
	}
}
