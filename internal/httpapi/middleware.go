package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now().UTC()
		next.ServeHTTP(w, r)
		logger.Printf("%s %s from=%s dur=%s", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
	})
}

// maxRequestBody caps JSON request bodies.  The largest legitimate payload
// is a 10-candidate violation batch, which stays well under 1 KiB.
const maxRequestBody = 64 << 10

// decodeAndValidate decodes a closed JSON body into dst and runs struct
// validation.  Writes the 400 response itself and returns false on failure.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return false
	}
	return true
}
