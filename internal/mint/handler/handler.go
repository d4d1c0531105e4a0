// Package handler is the thin HTTP layer over the mint services. It parses
// requests and maps errors; domain logic stays in the services.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mintgate/internal/mint/models"
	"mintgate/internal/mint/ports"
	"mintgate/internal/mint/service/admin"
	"mintgate/internal/mint/service/admission"
	platformmw "mintgate/internal/platform/middleware"
	id "mintgate/pkg/domain"

	dErrors "mintgate/pkg/domain-errors"
)

type Handler struct {
	admissions *admission.Service
	admin      *admin.Service
	status     ports.GlobalStatusStore
	logger     *slog.Logger
}

func New(admissions *admission.Service, adminSvc *admin.Service, status ports.GlobalStatusStore, logger *slog.Logger) *Handler {
	return &Handler{
		admissions: admissions,
		admin:      adminSvc,
		status:     status,
		logger:     logger,
	}
}

// RegisterPublic wires the unauthenticated endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/mint/{pool}", h.handleMint)
	r.Get("/status/{identity}", h.handleStatus)
	r.Get("/pools", h.handleListPools)
}

// RegisterAdmin wires the capability-guarded configuration endpoints. The
// caller is responsible for mounting these behind the authority middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/pools", h.handleDefinePool)
	r.Post("/pools/{pool}/enabled", h.handleSetPoolEnabled)
	r.Post("/engine/enabled", h.handleSetEngineEnabled)

	r.Get("/pools/{pool}/allowlist", h.handleListAllowlist)
	r.Post("/pools/{pool}/allowlist", h.handleAddAllowlist)
	r.Delete("/pools/{pool}/allowlist/{identity}", h.handleRemoveAllowlist)

	r.Get("/peers", h.handleListPeers)
	r.Put("/peers/{replica}", h.handleSetPeer)
	r.Delete("/peers/{replica}", h.handleRemovePeer)

	r.Get("/funding", h.handleFundingBalance)
	r.Post("/funding/deposit", h.handleDeposit)

	r.Delete("/records/{pool}/{identity}", h.handleResetRecord)
	r.Delete("/status/{identity}", h.handleResetStatus)

	r.Post("/authority", h.handleTransferAuthority)
}

// adminSubject reads the authenticated capability holder set by the authority
// middleware; empty when the route is mounted unauthenticated in tests.
func adminSubject(r *http.Request) string {
	return platformmw.GetAdminSubject(r.Context())
}

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	poolID, err := id.ParsePoolID(chi.URLParam(r, "pool"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed mint request"))
		return
	}
	identity, err := id.ParseIdentity(req.Identity)
	if err != nil {
		writeError(w, err)
		return
	}
	units := req.Units
	if units == 0 {
		units = 1
	}

	receipt, err := h.admissions.Admit(r.Context(), poolID, identity, units, req.Payment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	identity, err := id.ParseIdentity(chi.URLParam(r, "identity"))
	if err != nil {
		writeError(w, err)
		return
	}
	status, err := h.status.Get(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}
	if status == nil {
		status = &models.GlobalMintStatus{Identity: identity}
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) handleListPools(w http.ResponseWriter, r *http.Request) {
	pools, err := h.admin.ListPools(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pools)
}

func (h *Handler) handleDefinePool(w http.ResponseWriter, r *http.Request) {
	var req definePoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed pool definition"))
		return
	}
	pool, err := h.admin.DefinePool(r.Context(), id.PoolID(req.Pool), req.Capacity, req.UnitPrice, req.PerWalletLimit, req.Restricted)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pool)
}

func (h *Handler) handleSetPoolEnabled(w http.ResponseWriter, r *http.Request) {
	poolID, err := id.ParsePoolID(chi.URLParam(r, "pool"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req enabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed enablement request"))
		return
	}
	if err := h.admin.SetPoolEnabled(r.Context(), poolID, req.Enabled); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetEngineEnabled(w http.ResponseWriter, r *http.Request) {
	var req enabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed enablement request"))
		return
	}
	h.admin.SetEngineEnabled(r.Context(), req.Enabled)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListAllowlist(w http.ResponseWriter, r *http.Request) {
	poolID, err := id.ParsePoolID(chi.URLParam(r, "pool"))
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := h.admin.ListAllowed(r.Context(), poolID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleAddAllowlist(w http.ResponseWriter, r *http.Request) {
	poolID, err := id.ParsePoolID(chi.URLParam(r, "pool"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req allowlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed allowlist request"))
		return
	}
	identity, err := id.ParseIdentity(req.Identity)
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := h.admin.AllowIdentity(r.Context(), poolID, identity, adminSubject(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleRemoveAllowlist(w http.ResponseWriter, r *http.Request) {
	poolID, err := id.ParsePoolID(chi.URLParam(r, "pool"))
	if err != nil {
		writeError(w, err)
		return
	}
	identity, err := id.ParseIdentity(chi.URLParam(r, "identity"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.admin.DisallowIdentity(r.Context(), poolID, identity); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListPeers(w http.ResponseWriter, r *http.Request) {
	peers, err := h.admin.ListPeers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, peers)
}

func (h *Handler) handleSetPeer(w http.ResponseWriter, r *http.Request) {
	replica, err := id.ParseReplicaID(chi.URLParam(r, "replica"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req peerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed peer request"))
		return
	}
	// An empty identity is allowed: it keeps the replica listed while
	// excluding it from notification fan-out.
	if err := h.admin.SetPeer(r.Context(), replica, id.Identity(req.Identity)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemovePeer(w http.ResponseWriter, r *http.Request) {
	replica, err := id.ParseReplicaID(chi.URLParam(r, "replica"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.admin.RemovePeer(r.Context(), replica); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleFundingBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.admin.FundingBalance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: balance})
}

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed deposit request"))
		return
	}
	if err := h.admin.DepositFunding(r.Context(), req.Amount); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleResetRecord(w http.ResponseWriter, r *http.Request) {
	poolID, err := id.ParsePoolID(chi.URLParam(r, "pool"))
	if err != nil {
		writeError(w, err)
		return
	}
	identity, err := id.ParseIdentity(chi.URLParam(r, "identity"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.admin.ResetMintRecord(r.Context(), poolID, identity); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleResetStatus(w http.ResponseWriter, r *http.Request) {
	identity, err := id.ParseIdentity(chi.URLParam(r, "identity"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.admin.ResetGlobalStatus(r.Context(), identity); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTransferAuthority(w http.ResponseWriter, r *http.Request) {
	var req authorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed authority request"))
		return
	}
	if err := h.admin.TransferAuthority(r.Context(), req.NewHolder); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
