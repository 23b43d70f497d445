package ordering

import (
	"context"
	"strings"
)

// BindPhone starts the phone-verification round-trip. The service sends
// an OTP to the number; the returned text is the service's status line.
func BindPhone(ctx context.Context, svc Service, countryCode int, phone string) (string, error) {
	phone = strings.TrimPrefix(phone, "+91")
	res, err := svc.Call(ctx, ToolBindPhone, map[string]any{
		"country_code": countryCode,
		"phone":        phone,
	})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// VerifyPhone completes binding with the OTP the user received. The
// bound flag is true only when the service reports success.
func VerifyPhone(ctx context.Context, svc Service, otp string) (bool, string, error) {
	res, err := svc.Call(ctx, ToolVerifyPhone, map[string]any{"otp": otp})
	if err != nil {
		return false, "", err
	}
	bound := strings.Contains(strings.ToLower(res.Text), "success")
	return bound, res.Text, nil
}
