package web

import (
	"net/http"
	"strconv"
	"strings"

	"moodadmin/internal/application/orchestrators"
	"moodadmin/internal/domain/user"
)

// rejectRequest is the JSON body of POST /api/users/{id}/reject.
type rejectRequest struct {
	Reason string `json:"reason"`
}

// activeRequest is the JSON body of POST /api/users/{id}/active.
type activeRequest struct {
	Active *bool `json:"active"`
}

func manageUserDeps() orchestrators.ManageUserDeps {
	deps := orchestrators.ManageUserDeps{
		Users:  stores.Records,
		Audit:  stores.Audit,
		Mailer: opts.Mailer,
		Now:    timeNow,
	}
	if stores.Outbox != nil {
		deps.Outbox = stores.Outbox
	}
	return deps
}

// respondMutation finishes a mutation: HTML forms are redirected back with a flash,
// JSON callers get 204 or an error body.
func respondMutation(w http.ResponseWriter, r *http.Request, fallback, okMsg string, err error) {
	if isHTMLRequest(r) {
		target := returnTo(r, fallback)
		if err != nil {
			if errorStatus(err) == 0 {
				internalLog(r, err)
				redirectWithFlash(w, r, target, "error", "Something went wrong, please try again")
				return
			}
			redirectWithFlash(w, r, target, "error", err.Error())
			return
		}
		redirectWithFlash(w, r, target, "ok", okMsg)
		return
	}
	if err != nil {
		apiError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleApproveConsultant handles POST /api/users/{id}/approve
// POST: verified=true; 409 when the user is not a pending consultant
func handleApproveConsultant(w http.ResponseWriter, r *http.Request) {
	if !isJSONRequest(r) {
		_ = r.ParseForm()
	}
	err := orchestrators.ExecuteApproveConsultant(r.Context(), orchestrators.ApproveConsultantInput{
		UserID: r.PathValue("id"),
		Actor:  actorFrom(r),
	}, manageUserDeps())
	respondMutation(w, r, "/admin/consultants/requests", "Consultant approved", err)
}

// handleRejectConsultant handles POST /api/users/{id}/reject
// PRE: reason is optional and defaults to user.DefaultRejectReason
func handleRejectConsultant(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if isJSONRequest(r) {
		if err := strictDecode(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		req.Reason = r.PostFormValue("reason")
	}
	err := orchestrators.ExecuteRejectConsultant(r.Context(), orchestrators.RejectConsultantInput{
		UserID: r.PathValue("id"),
		Reason: req.Reason,
		Actor:  actorFrom(r),
	}, manageUserDeps())
	respondMutation(w, r, "/admin/consultants/requests", "Consultant rejected", err)
}

// handleSetUserActive handles POST /api/users/{id}/active
// PRE: active is "true" or "false"
func handleSetUserActive(w http.ResponseWriter, r *http.Request) {
	var active bool
	if isJSONRequest(r) {
		var req activeRequest
		if err := strictDecode(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
			return
		}
		if req.Active == nil {
			apiError(w, user.ErrInvalidActiveFlag)
			return
		}
		active = *req.Active
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		v, err := strconv.ParseBool(strings.TrimSpace(r.PostFormValue("active")))
		if err != nil {
			respondMutation(w, r, "/admin/users", "", user.ErrInvalidActiveFlag)
			return
		}
		active = v
	}
	err := orchestrators.ExecuteSetUserActive(r.Context(), orchestrators.SetUserActiveInput{
		UserID: r.PathValue("id"),
		Active: active,
		Actor:  actorFrom(r),
	}, manageUserDeps())
	msg := "User deactivated"
	if active {
		msg = "User activated"
	}
	respondMutation(w, r, "/admin/users", msg, err)
}

// handleDeleteUser handles DELETE /api/users/{id} and POST /api/users/{id}/delete
// POST: the user document is removed; related records are left in place
func handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost && !isJSONRequest(r) {
		_ = r.ParseForm()
	}
	err := orchestrators.ExecuteDeleteUser(r.Context(), orchestrators.DeleteUserInput{
		UserID: r.PathValue("id"),
		Actor:  actorFrom(r),
	}, manageUserDeps())
	respondMutation(w, r, "/admin/users", "User deleted", err)
}
