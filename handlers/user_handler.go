package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"streakzillaAPI/internal/notification"
	"streakzillaAPI/internal/types/profile"
	"streakzillaAPI/services"
)

type UserService interface {
	UserResolver
	GetProfile(ctx context.Context, userID uuid.UUID) (*services.ProfileWithStats, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req profile.UpdateProfileRequest) (*profile.Profile, error)
}

type DeviceRegistrar interface {
	RegisterDevice(ctx context.Context, userID uuid.UUID, req notification.RegisterDeviceRequest) error
}

type UserHandler struct {
	users   UserService
	devices DeviceRegistrar
}

func NewUserHandler(users UserService, devices DeviceRegistrar) *UserHandler {
	return &UserHandler{users: users, devices: devices}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w, h.users)
	if !ok {
		return
	}

	p, err := h.users.GetProfile(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "get profile", err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w, h.users)
	if !ok {
		return
	}

	var req profile.UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.users.UpdateProfile(ctx, userID, req)
	if err != nil {
		respondWithServiceError(w, "update profile", err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (h *UserHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w, h.users)
	if !ok {
		return
	}

	var req notification.RegisterDeviceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.devices.RegisterDevice(ctx, userID, req); err != nil {
		respondWithServiceError(w, "register device", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Device registered"})
}
