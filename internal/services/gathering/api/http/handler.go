// Package httpapi exposes the gathering service as a JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	apperrors "github.com/mirefield/gatherspace/internal/errors"
	"github.com/mirefield/gatherspace/internal/platform/cmd"
	"github.com/mirefield/gatherspace/internal/platform/timeouts"
	"github.com/mirefield/gatherspace/internal/services/gathering/app"
	"github.com/mirefield/gatherspace/internal/services/gathering/domain/rsvp"
	"github.com/mirefield/gatherspace/internal/services/gathering/domain/setup"
	"github.com/mirefield/gatherspace/internal/services/gathering/storage"
)

// Service is the gathering operation surface the API delegates to.
type Service interface {
	CreateGathering(ctx context.Context, principal app.Principal, input app.CreateGatheringInput) (storage.Gathering, error)
	GetGathering(ctx context.Context, principal app.Principal, gatheringID string) (storage.Gathering, error)
	ListGatheringsByHost(ctx context.Context, principal app.Principal) ([]storage.Gathering, error)
	SetupState(ctx context.Context, principal app.Principal, gatheringID string) (app.SetupState, error)
	SaveSetupItem(ctx context.Context, principal app.Principal, gatheringID string, item setup.ItemKey, input app.SetupItemInput) (app.SetupState, error)
	Launch(ctx context.Context, principal app.Principal, gatheringID string) (storage.Gathering, error)
	SubmitRSVP(ctx context.Context, principal app.Principal, gatheringID string, requested rsvp.Status) (storage.RSVP, error)
	ListRSVPs(ctx context.Context, principal app.Principal, gatheringID string) ([]storage.RSVP, error)
}

// Handler serves the gathering JSON API.
type Handler struct {
	service Service
}

// New builds the routed API handler with its middleware chain.
func New(service Service, jwtSecret []byte) (http.Handler, error) {
	if service == nil {
		return nil, fmt.Errorf("service is required")
	}
	if len(jwtSecret) == 0 {
		return nil, fmt.Errorf("jwt secret is required")
	}

	handler := &Handler{service: service}
	router := mux.NewRouter()
	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/v1").Subrouter()
	api.Use(mux.MiddlewareFunc(Authenticate(jwtSecret)))
	api.HandleFunc("/gatherings", handler.handleCreateGathering).Methods(http.MethodPost)
	api.HandleFunc("/gatherings", handler.handleListGatherings).Methods(http.MethodGet)
	api.HandleFunc("/gatherings/{gatheringID}", handler.handleGetGathering).Methods(http.MethodGet)
	api.HandleFunc("/gatherings/{gatheringID}/setup", handler.handleSetupState).Methods(http.MethodGet)
	api.HandleFunc("/gatherings/{gatheringID}/setup/{item}", handler.handleSaveSetupItem).Methods(http.MethodPut)
	api.HandleFunc("/gatherings/{gatheringID}/launch", handler.handleLaunch).Methods(http.MethodPost)
	api.HandleFunc("/gatherings/{gatheringID}/rsvp", handler.handleSubmitRSVP).Methods(http.MethodPut)
	api.HandleFunc("/gatherings/{gatheringID}/rsvps", handler.handleListRSVPs).Methods(http.MethodGet)

	return Chain(
		router,
		RecoverPanic(),
		RequestID(),
		RequestLogger(),
		Traced(cmd.ServiceGathering),
	), nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleCreateGathering(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, apperrors.E(apperrors.CodePrincipalRequired, "authentication is required"))
		return
	}

	var request createGatheringRequest
	if err := decodeJSON(r, &request); err != nil {
		WriteError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.StoreWrite)
	defer cancel()
	gathering, err := h.service.CreateGathering(ctx, principal, app.CreateGatheringInput{
		Title:               request.Title,
		ExperienceTypeLabel: request.ExperienceType,
		Capacity:            request.Capacity,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusCreated, gatheringViewFrom(gathering))
}

func (h *Handler) handleListGatherings(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, apperrors.E(apperrors.CodePrincipalRequired, "authentication is required"))
		return
	}
	gatherings, err := h.service.ListGatheringsByHost(r.Context(), principal)
	if err != nil {
		WriteError(w, err)
		return
	}
	views := make([]gatheringView, 0, len(gatherings))
	for _, gathering := range gatherings {
		views = append(views, gatheringViewFrom(gathering))
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{"gatherings": views})
}

func (h *Handler) handleGetGathering(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, apperrors.E(apperrors.CodePrincipalRequired, "authentication is required"))
		return
	}
	gathering, err := h.service.GetGathering(r.Context(), principal, mux.Vars(r)["gatheringID"])
	if err != nil {
		WriteError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, gatheringViewFrom(gathering))
}

func (h *Handler) handleSetupState(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, apperrors.E(apperrors.CodePrincipalRequired, "authentication is required"))
		return
	}
	state, err := h.service.SetupState(r.Context(), principal, mux.Vars(r)["gatheringID"])
	if err != nil {
		WriteError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, setupStateViewFrom(state))
}

func (h *Handler) handleSaveSetupItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, apperrors.E(apperrors.CodePrincipalRequired, "authentication is required"))
		return
	}
	vars := mux.Vars(r)

	var request setupItemRequest
	if err := decodeJSON(r, &request); err != nil {
		WriteError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.StoreWrite)
	defer cancel()
	state, err := h.service.SaveSetupItem(
		ctx,
		principal,
		vars["gatheringID"],
		setup.ItemKey(vars["item"]),
		request.toInput(),
	)
	if err != nil {
		WriteError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, setupStateViewFrom(state))
}

func (h *Handler) handleLaunch(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, apperrors.E(apperrors.CodePrincipalRequired, "authentication is required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.StoreWrite)
	defer cancel()
	gathering, err := h.service.Launch(ctx, principal, mux.Vars(r)["gatheringID"])
	if err != nil {
		WriteError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, gatheringViewFrom(gathering))
}

func (h *Handler) handleSubmitRSVP(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, apperrors.E(apperrors.CodePrincipalRequired, "authentication is required"))
		return
	}

	var request rsvpRequest
	if err := decodeJSON(r, &request); err != nil {
		WriteError(w, err)
		return
	}
	status, ok := rsvp.NormalizeStatus(request.Status)
	if !ok {
		WriteError(w, apperrors.E(apperrors.CodeRSVPInvalidStatus, fmt.Sprintf("unknown rsvp status %q", request.Status)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.StoreWrite)
	defer cancel()
	record, err := h.service.SubmitRSVP(ctx, principal, mux.Vars(r)["gatheringID"], status)
	if err != nil {
		WriteError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, rsvpViewFrom(record))
}

func (h *Handler) handleListRSVPs(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, apperrors.E(apperrors.CodePrincipalRequired, "authentication is required"))
		return
	}
	records, err := h.service.ListRSVPs(r.Context(), principal, mux.Vars(r)["gatheringID"])
	if err != nil {
		WriteError(w, err)
		return
	}
	views := make([]rsvpView, 0, len(records))
	for _, record := range records {
		views = append(views, rsvpViewFrom(record))
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{"rsvps": views})
}

// decodeJSON parses a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return apperrors.E(apperrors.CodeGatheringValidationFailed, fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
