package enums

// AuditAction names the event recorded in a shoe's audit trail. Operators may
// record free-form actions too, so the set below is not closed.
type AuditAction string

const (
	AuditActionCreated          AuditAction = "created"
	AuditActionUpdated          AuditAction = "updated"
	AuditActionListed           AuditAction = "listed"
	AuditActionSold             AuditAction = "sold"
	AuditActionPaymentCompleted AuditAction = "payment_completed"
	AuditActionPaymentFailed    AuditAction = "payment_failed"
	AuditActionShipped          AuditAction = "shipped"
	AuditActionDelivered        AuditAction = "delivered"
)

// ActorSystem is used when a caller does not identify itself.
const ActorSystem = "system"

func (a AuditAction) String() string {
	return string(a)
}

// ListingAuditAction maps a listing target to its audit action.
func ListingAuditAction(target ListingStatus) AuditAction {
	if target == ListingStatusSold {
		return AuditActionSold
	}
	return AuditActionListed
}

// PaymentAuditAction maps a payment target to its audit action.
func PaymentAuditAction(target PaymentStatus) AuditAction {
	if target == PaymentStatusFailed {
		return AuditActionPaymentFailed
	}
	return AuditActionPaymentCompleted
}

// ShippingAuditAction maps a shipping target to its audit action.
func ShippingAuditAction(target ShippingStatus) AuditAction {
	if target == ShippingStatusDelivered {
		return AuditActionDelivered
	}
	return AuditActionShipped
}
