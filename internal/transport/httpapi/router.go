package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"partsource/internal/bootstrap/logging"
	"partsource/internal/domain/quote"
	"partsource/internal/domain/sourcing"
	"partsource/internal/errs"
	"partsource/internal/ports"
	usecase "partsource/internal/usecase/sourcing"
)

var validate = validator.New()

type httpError struct {
	Reason string `json:"reason"`
}

// NewRouter wires the thin JSON API over the sourcing service. Handlers
// translate payloads and status codes; all decision logic stays in the
// usecase layer.
func NewRouter(service *usecase.Service, orders ports.PurchaseOrderRepository) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sourcing-requests", createRequest(service))
		r.Post("/sourcing-requests/{id}/quotes", submitQuote(service))
		r.Post("/sourcing-requests/{id}/resolve", resolveRequest(service))
		r.Post("/sourcing-requests/{id}/cancel", cancelRequest(service))
		r.Get("/sourcing-requests/{id}/outcome", getOutcome(service))
		r.Get("/purchase-orders/{po}", getPurchaseOrder(orders))
	})
	return r
}

func createRequest(service *usecase.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createRequestPayload
		if err := render.DecodeJSON(r.Body, &payload); err != nil {
			badRequest(w, r, "malformed_json")
			return
		}
		if err := validate.Struct(payload); err != nil {
			badRequest(w, r, "invalid_payload")
			return
		}

		input := usecase.CreateRequestInput{RepairOrderID: payload.RepairOrderID}
		if payload.Deadline != nil {
			input.Deadline = *payload.Deadline
		}
		for _, rp := range payload.Requirements {
			req, err := rp.toDomain(payload.RepairOrderID)
			if err != nil {
				badRequest(w, r, "invalid_target_price")
				return
			}
			input.Requirements = append(input.Requirements, req)
		}

		request, err := service.CreateRequest(r.Context(), input)
		if err != nil {
			serverError(w, r, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"requestId": request.RequestID,
			"state":     request.State,
			"deadline":  request.Deadline,
		})
	}
}

func submitQuote(service *usecase.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := chi.URLParam(r, "id")

		var payload quotePayload
		if err := render.DecodeJSON(r.Body, &payload); err != nil {
			badRequest(w, r, "malformed_json")
			return
		}
		if err := validate.Struct(payload); err != nil {
			badRequest(w, r, "invalid_payload")
			return
		}

		q, err := payload.toDomain()
		if err != nil {
			badRequest(w, r, "invalid_quote")
			return
		}

		rec, err := service.SubmitQuote(r.Context(), requestID, q)
		if err != nil {
			switch {
			case errors.Is(err, ports.ErrNotFound):
				notFound(w, r)
			case errors.Is(err, sourcing.ErrAlreadyFinalized):
				conflict(w, r, "request_finalized")
			default:
				serverError(w, r, err)
			}
			return
		}

		resp := map[string]any{
			"quoteId":     rec.Quote.QuoteID,
			"disposition": rec.Disposition,
		}
		if rec.Disposition == quote.DispositionRejected {
			resp["rejectionCode"] = rec.RejectionCode
		}
		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, resp)
	}
}

func resolveRequest(service *usecase.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := chi.URLParam(r, "id")

		outcome, err := service.Resolve(r.Context(), requestID)
		if err != nil {
			switch {
			case errors.Is(err, ports.ErrNotFound):
				notFound(w, r)
			case errors.Is(err, sourcing.ErrAlreadyFinalized):
				conflict(w, r, "request_finalized")
			default:
				serverError(w, r, err)
			}
			return
		}

		render.JSON(w, r, outcome)
	}
}

func cancelRequest(service *usecase.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := chi.URLParam(r, "id")

		if err := service.Cancel(r.Context(), requestID); err != nil {
			switch {
			case errors.Is(err, ports.ErrNotFound):
				notFound(w, r)
			case errors.Is(err, sourcing.ErrAlreadyFinalized):
				conflict(w, r, "request_finalized")
			default:
				serverError(w, r, err)
			}
			return
		}

		render.JSON(w, r, map[string]string{"state": string(sourcing.StateCancelled)})
	}
}

func getOutcome(service *usecase.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := chi.URLParam(r, "id")

		outcome, err := service.Outcome(r.Context(), requestID)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				notFound(w, r)
				return
			}
			serverError(w, r, err)
			return
		}

		render.JSON(w, r, outcome)
	}
}

func getPurchaseOrder(orders ports.PurchaseOrderRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poNumber := chi.URLParam(r, "po")

		order, err := orders.Get(r.Context(), poNumber)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				notFound(w, r)
				return
			}
			serverError(w, r, err)
			return
		}

		render.JSON(w, r, order)
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, reason string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, httpError{Reason: reason})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, httpError{Reason: "not_found"})
}

func conflict(w http.ResponseWriter, r *http.Request, reason string) {
	render.Status(r, http.StatusConflict)
	render.JSON(w, r, httpError{Reason: reason})
}

func serverError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Error(r.Context(), "request failed",
		slog.String("component", "httpapi"),
		slog.String("path", r.URL.Path),
		slog.Any("err", errs.Loggable(err)))
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, httpError{Reason: "internal_error"})
}
