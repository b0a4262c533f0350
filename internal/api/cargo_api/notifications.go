package cargo_api

import (
	"net/http"

	"github.com/BearBump/CargoFlow/internal/notifications"
)

type notificationRequest struct {
	Recipients []string `json:"recipients" validate:"omitempty,dive,email"`
	Subject    string   `json:"subject" validate:"required"`
	Message    string   `json:"message" validate:"required"`
}

// Recipients are trimmed, lowercased and deduplicated before validation.
func (req *notificationRequest) normalize() {
	if req.Recipients != nil {
		req.Recipients = notifications.NormalizeRecipients(req.Recipients)
	}
}

type notificationBody struct {
	Success bool   `json:"success"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (a *API) sendNotification(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if a.Dispatcher != nil && a.Dispatcher.Dispatch(r.Context(), req.Recipients, req.Subject, req.Message, false) {
		writeJSON(w, http.StatusAccepted, notificationBody{
			Success: true,
			Subject: req.Subject,
			Message: "Notification email dispatched.",
		})
		return
	}
	writeJSON(w, http.StatusBadRequest, notificationBody{
		Success: false,
		Subject: req.Subject,
		Message: "Notification skipped - no recipients configured.",
	})
}
