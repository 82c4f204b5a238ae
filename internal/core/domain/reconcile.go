package domain

// Effect is the host-order side effect a reconciliation step demands.
type Effect int

const (
	EffectNone Effect = iota
	EffectComplete
	EffectFail
)

// Reconcile decides the next payment status from the current one and a
// verification result. It is the single transition table both convergence
// drivers (client poll and cron sweep) run through.
//
// Terminal states win over everything: once a record is APPROVED or FAILED
// it never moves again and never demands a side effect, so a poll and a
// sweep racing on the same order produce at most one completion.
func Reconcile(current PaymentStatus, v VerificationStatus) (PaymentStatus, Effect) {
	if current.Terminal() {
		return current, EffectNone
	}

	switch v {
	case VerificationSuccess:
		return StatusApproved, EffectComplete
	case VerificationFailed, VerificationRejected, VerificationCancelled:
		return StatusFailed, EffectFail
	default:
		// Still waiting on the customer's phone. Retried later.
		return StatusPending, EffectNone
	}
}
