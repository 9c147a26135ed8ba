package service

import (
	"context"
	"html/template"

	"github.com/giovannadias1704-collab/medplanner-sub001/internal/apperrors"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/auth"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/biz"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/constants"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// CouponService exposes coupon application and the approval-link endpoint.
type CouponService struct {
	uc *biz.CouponUsecase
}

// NewCouponService creates the coupon service.
func NewCouponService(uc *biz.CouponUsecase) *CouponService {
	return &CouponService{uc: uc}
}

// ApplyCouponRequest applies a coupon code against a chosen plan.
type ApplyCouponRequest struct {
	Code string `json:"code"`
	Plan string `json:"plan"`
}

// ApplyCouponReply mirrors the created request; WhatsappURL lets the web
// client open the prefilled chat to the administrator.
type ApplyCouponReply struct {
	Token           string  `json:"token"`
	Code            string  `json:"code"`
	Plan            string  `json:"plan"`
	DiscountPercent int     `json:"discount_percent"`
	RequestedPrice  float64 `json:"requested_price"`
	ApprovalStatus  string  `json:"approval_status"`
	WhatsappURL     string  `json:"whatsapp_url,omitempty"`
}

// ApplyCoupon validates and records a coupon application.
func (s *CouponService) ApplyCoupon(ctx http.Context) error {
	var in ApplyCouponRequest
	if err := ctx.Bind(&in); err != nil {
		return err
	}
	h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
		uid, err := auth.RequireUser(c)
		if err != nil {
			return nil, err
		}
		email, _ := auth.GetEmailFromContext(c)
		r := req.(*ApplyCouponRequest)
		request, link, err := s.uc.ApplyCoupon(c, uid, email, r.Code, biz.Plan(r.Plan))
		if err != nil {
			return nil, err
		}
		return &ApplyCouponReply{
			Token:           request.Token,
			Code:            request.Code,
			Plan:            string(request.RequestedPlan),
			DiscountPercent: request.RequestedDiscount,
			RequestedPrice:  request.RequestedPrice,
			ApprovalStatus:  request.ApprovalStatus,
			WhatsappURL:     link,
		}, nil
	})
	out, err := h(ctx, &in)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

var approvalPage = template.Must(template.New("approval").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>MedPlanner - Aprovação de desconto</title></head>
<body style="font-family: sans-serif; max-width: 40rem; margin: 4rem auto;">
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
{{if .Detail}}<p><small>{{.Detail}}</small></p>{{end}}
</body>
</html>
`))

type approvalPageData struct {
	Title   string
	Message string
	Detail  string
}

// ResolveDiscount is the approval-link endpoint. It is activated from an
// out-of-band chat message and always renders a terminal, human-readable
// page, success or failure, so a broken or reused link can be diagnosed.
func (s *CouponService) ResolveDiscount(ctx http.Context) error {
	token := ctx.Query().Get("token")
	action := ctx.Query().Get("action")

	result, err := s.uc.Resolve(ctx, token, action)
	if err != nil {
		return renderApprovalPage(ctx, approvalFailureData(err), int(kerrors.FromError(err).Code))
	}

	data := approvalPageData{}
	if result.Action == constants.ActionReject {
		data.Title = "Desconto rejeitado"
		data.Message = "O pedido de desconto " + result.Code + " de " + result.OwnerEmail + " foi rejeitado."
	} else {
		data.Title = "Desconto aprovado"
		if result.Status == biz.StatusActive {
			data.Message = "O desconto " + result.Code + " de " + result.OwnerEmail + " foi aprovado e a assinatura já está ativa."
		} else {
			data.Message = "O desconto " + result.Code + " de " + result.OwnerEmail + " foi aprovado. O usuário deve enviar o comprovante de pagamento."
		}
	}
	return renderApprovalPage(ctx, data, 200)
}

func approvalFailureData(err error) approvalPageData {
	switch {
	case apperrors.IsAlreadyResolved(err):
		return approvalPageData{
			Title:   "Pedido já resolvido",
			Message: "Este link já foi utilizado. O pedido de desconto não foi alterado.",
			Detail:  err.Error(),
		}
	case apperrors.IsInvalidToken(err):
		return approvalPageData{
			Title:   "Link inválido",
			Message: "Este link não corresponde a nenhum pedido de desconto.",
			Detail:  err.Error(),
		}
	case apperrors.IsInvalidAction(err):
		return approvalPageData{
			Title:   "Ação inválida",
			Message: "O link está malformado: a ação deve ser aprovar ou rejeitar.",
			Detail:  err.Error(),
		}
	case apperrors.IsStorageUnavailable(err):
		return approvalPageData{
			Title:   "Serviço indisponível",
			Message: "Não foi possível acessar o banco de dados. Tente novamente em instantes.",
			Detail:  err.Error(),
		}
	default:
		return approvalPageData{
			Title:   "Falha ao resolver o pedido",
			Message: "O pedido de desconto não pôde ser resolvido.",
			Detail:  err.Error(),
		}
	}
}

func renderApprovalPage(ctx http.Context, data approvalPageData, status int) error {
	w := ctx.Response()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return approvalPage.Execute(w, data)
}
