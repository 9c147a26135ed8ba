package data

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/giovannadias1704-collab/medplanner-sub001/internal/biz"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	defaultGatewayTimeout = 10 * time.Second
	gatewayAttempts       = 3
)

// whatsAppDispatcher implements biz.NotificationDispatcher over WhatsApp deep
// links. The prefilled chat link is the message; an optional gateway webhook
// pushes it to the administrator, otherwise it is only logged and returned so
// the requesting client can open the chat itself.
type whatsAppDispatcher struct {
	adminPhone string
	gatewayURL string
	client     *http.Client
	log        *log.Helper
}

// NewWhatsAppDispatcher creates the WhatsApp notification dispatcher.
func NewWhatsAppDispatcher(c *conf.Bootstrap, logger log.Logger) biz.NotificationDispatcher {
	phone := ""
	gateway := ""
	timeout := defaultGatewayTimeout
	if c != nil && c.App != nil && c.App.WhatsApp != nil {
		phone = c.App.WhatsApp.AdminPhone
		gateway = c.App.WhatsApp.GatewayURL
		if d, err := time.ParseDuration(c.App.WhatsApp.Timeout); err == nil && d > 0 {
			timeout = d
		}
	}
	return &whatsAppDispatcher{
		adminPhone: phone,
		gatewayURL: gateway,
		client:     &http.Client{Timeout: timeout},
		log:        log.NewHelper(logger),
	}
}

// DispatchDiscountApproval builds the prefilled chat link and, when a gateway
// is configured, delivers it with bounded retries. Fire-and-forget: the caller
// gets the link back even when delivery failed.
func (d *whatsAppDispatcher) DispatchDiscountApproval(ctx context.Context, notice *biz.DiscountApprovalNotice) (string, error) {
	message := buildApprovalMessage(notice)
	link := fmt.Sprintf("https://wa.me/%s?text=%s", d.adminPhone, url.QueryEscape(message))

	d.log.Infof("Discount approval notice for %s (%s, %d%%): %s",
		notice.UserEmail, notice.CouponCode, notice.DiscountPercent, link)

	if d.gatewayURL == "" {
		return link, nil
	}

	var lastErr error
	for attempt := 1; attempt <= gatewayAttempts; attempt++ {
		if err := d.post(ctx, link); err != nil {
			lastErr = err
			d.log.Warnf("Gateway delivery attempt %d/%d failed: %v", attempt, gatewayAttempts, err)
			select {
			case <-ctx.Done():
				return link, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
			continue
		}
		return link, nil
	}
	return link, lastErr
}

func (d *whatsAppDispatcher) post(ctx context.Context, link string) error {
	form := url.Values{}
	form.Set("to", d.adminPhone)
	form.Set("link", link)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.gatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}

func buildApprovalMessage(n *biz.DiscountApprovalNotice) string {
	var b strings.Builder
	b.WriteString("Novo pedido de desconto MedPlanner\n")
	fmt.Fprintf(&b, "Usuário: %s (%s)\n", n.UserEmail, n.UserID)
	fmt.Fprintf(&b, "Cupom: %s (%d%%)\n", n.CouponCode, n.DiscountPercent)
	fmt.Fprintf(&b, "Plano: %s - R$ %.2f\n\n", n.PlanName, n.RequestedPrice)
	fmt.Fprintf(&b, "Aprovar: %s\n", n.ApproveURL)
	fmt.Fprintf(&b, "Rejeitar: %s", n.RejectURL)
	return b.String()
}
