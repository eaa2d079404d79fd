package services

import (
	"fmt"
	"strings"

	"github.com/ManishSRawat/e-sell/internal/domain"
)

type email struct {
	To      string
	Subject string
	Body    string
}

func welcomeEmail(u *domain.User, verifyURL string) email {
	return email{
		To:      u.Email,
		Subject: "Welcome to Our E-Commerce Store!",
		Body: fmt.Sprintf(`Welcome %s!

Thank you for registering with our store. Please verify your email by clicking the following link:
%s

If you did not register for an account, please ignore this email.
`, u.FirstName, verifyURL),
	}
}

func resetEmail(u *domain.User, resetURL string) email {
	return email{
		To:      u.Email,
		Subject: "Password Reset Request",
		Body: fmt.Sprintf(`Hello %s,

You have requested to reset your password. Click the following link to reset your password:
%s

This link will expire in 1 hour.

If you did not request a password reset, please ignore this email.
`, u.FirstName, resetURL),
	}
}

func orderConfirmationEmail(u *domain.User, o *domain.Order) email {
	a := o.ShippingAddress
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nThank you for your order! Your order details are as follows:\n\n", u.FirstName)
	fmt.Fprintf(&b, "Order ID: %d\nTotal Amount: $%s\nStatus: %s\n\n", o.ID, o.TotalAmount.StringFixed(2), o.Status)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "  %d x %s @ $%s\n", it.Quantity, it.ProductName, it.PriceAtTime.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nShipping Address:\n%s\n%s, %s %s\n%s\n\n", a.Street, a.City, a.State, a.Zip, a.Country)
	b.WriteString("We will notify you when your order ships.\n\nThank you for shopping with us!\n")
	return email{To: u.Email, Subject: "Order Confirmation", Body: b.String()}
}

func orderCancelledEmail(u *domain.User, o *domain.Order) email {
	return email{
		To:      u.Email,
		Subject: "Order Cancelled",
		Body: fmt.Sprintf(`Hello %s,

Your order #%d has been cancelled.

If you did not request this cancellation, please contact our customer service immediately.

Thank you for your understanding.
`, u.FirstName, o.ID),
	}
}

func orderStatusEmail(u *domain.User, o *domain.Order) email {
	return email{
		To:      u.Email,
		Subject: "Order Status Update",
		Body: fmt.Sprintf(`Hello %s,

Your order #%d status has been updated to: %s

You can track your order status by logging into your account.

Thank you for shopping with us!
`, u.FirstName, o.ID, o.Status),
	}
}
