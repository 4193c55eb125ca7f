package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/verte-zerg/typerank/internal/model"
	"github.com/verte-zerg/typerank/internal/validation"
)

func handleSubmit(logger *slog.Logger, submitter Submitter, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		received := now()

		var req model.Submission
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		// Once accepted the write runs to completion even if the client leaves.
		ctx := context.WithoutCancel(r.Context())
		res, err := submitter.Submit(ctx, req, received)
		if err != nil {
			var verr *validation.Error
			if errors.As(err, &verr) {
				logger.Info("submission rejected", "username", req.Username, "reason", string(verr.Reason))
				writeError(w, http.StatusBadRequest, verr.Error())
				return
			}
			logger.Error("submission failed", "username", req.Username, "error", err)
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}

		logger.Info("submission accepted",
			"username", req.Username,
			"score", res.Score,
			"rank", res.Rank,
			"high_score", res.IsHighScore,
		)
		writeJSON(w, http.StatusOK, res)
	}
}
