package mw

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/muse/internal/envelope"
	"github.com/MrSnakeDoc/muse/internal/logger"
)

const msgForbidden = "This endpoint is restricted"

// OpsAccess restricts the operational endpoints to the allowed IPs and
// CIDRs. An empty list lets everyone through.
func OpsAccess(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	cidrs, invalid := parseCIDRs(allowed)
	if len(invalid) > 0 {
		log.Warn("ignoring unreadable allow-list entries", logger.Strings("entries", invalid))
	}
	if len(cidrs) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr := clientAddr(r, trustProxy)
			if !cidrs.contains(addr) {
				log.Debug("ops endpoint rejected",
					logger.String("ip", addr.String()),
					logger.String("path", r.URL.Path),
					logger.String("request_id", middleware.GetReqID(r.Context())),
				)
				envelope.Write(w, envelope.Fail[struct{}](http.StatusForbidden, msgForbidden))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
