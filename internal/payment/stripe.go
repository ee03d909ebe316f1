package payment

import (
	"context"
	"fmt"

	"ms-canteen/internal/logger"
	"ms-canteen/internal/models"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// StripeGateway creates hosted checkout sessions for the online
// remainder of an order. Alternative to the default Cashfree gateway,
// selected with PAYMENT_PROVIDER=stripe.
type StripeGateway struct {
	baseURL string
	log     *logger.Logger
}

func NewStripeGateway(secretKey, baseURL string, log *logger.Logger) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{baseURL: baseURL, log: log}
}

func (g *StripeGateway) CreatePaymentLink(ctx context.Context, order *models.Order, payment *models.Payment, customer *models.User) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("inr"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Canteen order %s", order.OrderNo)),
					},
					UnitAmount: stripe.Int64(int64(payment.Amount * 100)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(fmt.Sprintf("%s/api/payment/callback?order_id=%s&payment_status=SUCCESS", g.baseURL, order.ID)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/api/payment/callback?order_id=%s&payment_status=FAILED", g.baseURL, order.ID)),
	}
	params.AddMetadata("order_id", order.ID)
	params.AddMetadata("payment_id", payment.ID)

	sess, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe checkout session: %w", err)
	}

	g.log.LogPayment("STRIPE", order.OrderNo, fmt.Sprintf("checkout session %s created", sess.ID))
	return sess.ID, sess.URL, nil
}
