package multiAuth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/MrEthical07/multiAuth/otp"
)

// SendVerificationCode issues a fresh code for phoneNumber and texts it.
// Any previous code or verified state for the number is replaced.
func (e *Engine) SendVerificationCode(ctx context.Context, phoneNumber string) error {
	if e == nil || e.verifier == nil {
		return ErrEngineNotReady
	}
	if err := e.verifier.Issue(ctx, phoneNumber); err != nil {
		if errors.Is(err, otp.ErrSendFailed) {
			e.metricInc(MetricOTPSendFailure)
			e.logger.WarnContext(ctx, "verification sms failed", slog.String("error", err.Error()))
		} else {
			e.logStoreError(ctx, "issue verification code", err)
		}
		return err
	}
	e.metricInc(MetricOTPIssued)
	e.logger.InfoContext(ctx, "verification code issued")
	return nil
}

// VerifyCode checks code against the pending code for phoneNumber. A match
// puts the number in the verified state and returns true.
func (e *Engine) VerifyCode(ctx context.Context, phoneNumber, code string) (bool, error) {
	if e == nil || e.verifier == nil {
		return false, ErrEngineNotReady
	}
	ok, err := e.verifier.Check(ctx, code, phoneNumber)
	if err != nil {
		e.logStoreError(ctx, "check verification code", err)
		return false, err
	}
	if ok {
		e.metricInc(MetricOTPVerified)
	} else {
		e.metricInc(MetricOTPMismatch)
	}
	return ok, nil
}
