package internaldefs

import (
	multiAuth "github.com/MrEthical07/multiAuth"
)

// Def names one engine metric for exporters.
type Def struct {
	ID   multiAuth.MetricID
	Name string
	Help string
}

// Counters lists every exported counter in render order.
var Counters = []Def{
	{ID: multiAuth.MetricLoginSuccess, Name: "multiauth_login_success_total", Help: "Completed logins."},
	{ID: multiAuth.MetricLoginFailure, Name: "multiauth_login_failure_total", Help: "Rejected or failed logins."},
	{ID: multiAuth.MetricFederatedLogin, Name: "multiauth_federated_login_total", Help: "Users resolved through Google or Apple."},
	{ID: multiAuth.MetricSignUpSuccess, Name: "multiauth_sign_up_success_total", Help: "Created users."},
	{ID: multiAuth.MetricSignUpDuplicate, Name: "multiauth_sign_up_duplicate_total", Help: "Sign-ups rejected for an existing email or phone number."},
	{ID: multiAuth.MetricSignUpRejected, Name: "multiauth_sign_up_rejected_total", Help: "Sign-ups rejected by validation or phone verification."},
	{ID: multiAuth.MetricRefreshSuccess, Name: "multiauth_refresh_success_total", Help: "Access tokens issued from refresh tokens."},
	{ID: multiAuth.MetricRefreshFailure, Name: "multiauth_refresh_failure_total", Help: "Failed refresh operations."},
	{ID: multiAuth.MetricSessionCreated, Name: "multiauth_session_created_total", Help: "Created device sessions."},
	{ID: multiAuth.MetricSessionRejected, Name: "multiauth_session_rejected_total", Help: "Requests rejected by the session gate."},
	{ID: multiAuth.MetricSessionStoreError, Name: "multiauth_store_error_total", Help: "Redis failures seen by the engine."},
	{ID: multiAuth.MetricLogout, Name: "multiauth_logout_total", Help: "Single-device sign-outs."},
	{ID: multiAuth.MetricLogoutAll, Name: "multiauth_logout_all_total", Help: "Sign-outs of every device."},
	{ID: multiAuth.MetricOTPIssued, Name: "multiauth_otp_issued_total", Help: "Verification codes sent."},
	{ID: multiAuth.MetricOTPSendFailure, Name: "multiauth_otp_send_failure_total", Help: "Verification codes that could not be sent."},
	{ID: multiAuth.MetricOTPVerified, Name: "multiauth_otp_verified_total", Help: "Phone numbers verified."},
	{ID: multiAuth.MetricOTPMismatch, Name: "multiauth_otp_mismatch_total", Help: "Verification attempts with a wrong code."},
}

// Latency is the ValidateSession latency histogram.
var Latency = Def{
	ID:   multiAuth.MetricValidateLatency,
	Name: "multiauth_validate_session_latency_seconds",
	Help: "ValidateSession latency.",
}

// Bucket is one latency bucket. LE is the Prometheus upper bound in seconds.
type Bucket struct {
	LE string
}

// Buckets mirrors the engine's latency bounds, last bucket unbounded.
var Buckets = [...]Bucket{
	{LE: "0.005"},
	{LE: "0.01"},
	{LE: "0.025"},
	{LE: "0.05"},
	{LE: "0.1"},
	{LE: "0.25"},
	{LE: "0.5"},
	{LE: "+Inf"},
}

// BucketCount is the number of latency buckets.
const BucketCount = len(Buckets)

// Cumulative turns the per-bucket counts in raw into running totals. Missing
// buckets count as zero and extra ones are ignored. The last element is the
// sample count.
func Cumulative(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var total uint64
	for i := range out {
		if i < len(raw) {
			total += raw[i]
		}
		out[i] = total
	}
	return out
}
