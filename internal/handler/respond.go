package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// validate checks request struct tags. Shared across handlers; the
// validator caches struct metadata internally.
var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeInternalError(w http.ResponseWriter, err error, context string) {
	log.Error().Err(err).Msg(context)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// writeValidationError maps validator failures to a 400 with the first
// offending field named.
func writeValidationError(w http.ResponseWriter, err error) {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		writeError(w, http.StatusBadRequest, "invalid field: "+errs[0].Field())
		return
	}
	writeError(w, http.StatusBadRequest, "invalid request")
}

// restaurantPathID parses the {rid} URL parameter. Writes the 400 itself so
// callers can bail with a bare return.
func restaurantPathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return uuid.Nil, false
	}
	return restaurantID, true
}

// scopedPathIDs parses {rid} plus a second URL parameter naming a resource
// within the restaurant.
func scopedPathIDs(w http.ResponseWriter, r *http.Request, param, label string) (restaurantID, resourceID uuid.UUID, ok bool) {
	restaurantID, ok = restaurantPathID(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	resourceID, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+label+" ID")
		return uuid.Nil, uuid.Nil, false
	}
	return restaurantID, resourceID, true
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.String())
	return n
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
