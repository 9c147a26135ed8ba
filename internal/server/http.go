package server

import (
	"encoding/json"
	stdhttp "net/http"
	"time"

	"github.com/giovannadias1704-collab/medplanner-sub001/internal/auth"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/conf"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/service"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/wire"
)

// ProviderSet is server providers.
var ProviderSet = wire.NewSet(NewHTTPServer)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(c *conf.Bootstrap, subs *service.SubscriptionService, coupons *service.CouponService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			auth.Middleware(),
		),
		http.ErrorEncoder(customErrorEncoder),
	}
	if c.Server.Http.Addr != "" {
		opts = append(opts, http.Address(c.Server.Http.Addr))
	}
	if d, err := time.ParseDuration(c.Server.Http.Timeout); err == nil && d > 0 {
		opts = append(opts, http.Timeout(d))
	}
	srv := http.NewServer(opts...)

	v1 := srv.Route("/v1")
	v1.GET("/plans", subs.ListPlans)
	v1.GET("/subscription", subs.GetSubscription)
	v1.POST("/subscription/upgrade", subs.UpgradePlan)
	v1.POST("/subscription/proof", subs.SubmitProof)
	v1.POST("/subscription/approve-payment", subs.ApprovePayment)
	v1.GET("/admin/subscriptions", subs.ListByStatus)
	v1.POST("/coupons/apply", coupons.ApplyCoupon)

	root := srv.Route("/")
	// the approval link lives at the site root so the chat message stays short
	root.GET("/approve-discount", coupons.ResolveDiscount)
	root.GET("/health", func(ctx http.Context) error {
		return ctx.Result(200, map[string]string{
			"status":  "ok",
			"service": "medplanner-subscription",
		})
	})

	return srv
}

func customErrorEncoder(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	se := kerrors.FromError(err)
	status := stdhttp.StatusInternalServerError
	response := map[string]interface{}{
		"code":    status,
		"message": "internal server error",
	}

	if se != nil {
		status = mapErrorStatus(int(se.Code))
		response["code"] = se.Code
		response["reason"] = se.Reason
		response["message"] = se.Message
		if len(se.Metadata) > 0 {
			response["metadata"] = se.Metadata
		}
	} else if err != nil {
		response["message"] = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

func mapErrorStatus(code int) int {
	if code >= 100 && code < 600 {
		return code
	}
	return stdhttp.StatusInternalServerError
}
