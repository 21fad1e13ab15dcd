package domain

type FulfillmentAction string

const (
	ActionConfirm         FulfillmentAction = "confirm"
	ActionStartProcessing FulfillmentAction = "start_processing"
	ActionMarkPacked      FulfillmentAction = "mark_packed"
	ActionShip            FulfillmentAction = "ship"
	ActionMarkDelivered   FulfillmentAction = "mark_delivered"
	ActionCancel          FulfillmentAction = "cancel"
)

// The fulfillment pipeline is one-directional with a single deterministic
// successor per state; there is no rollback action.
var fulfillmentFlow = map[OrderStatus]OrderStatus{
	OrderStatusPending:    OrderStatusConfirmed,
	OrderStatusConfirmed:  OrderStatusProcessing,
	OrderStatusProcessing: OrderStatusPacked,
	OrderStatusPacked:     OrderStatusShipped,
	OrderStatusShipped:    OrderStatusDelivered,
}

var fulfillmentActions = map[OrderStatus][]FulfillmentAction{
	OrderStatusPending:    {ActionConfirm, ActionCancel},
	OrderStatusConfirmed:  {ActionStartProcessing, ActionCancel},
	OrderStatusProcessing: {ActionMarkPacked, ActionCancel},
	OrderStatusPacked:     {ActionShip, ActionCancel},
	OrderStatusShipped:    {ActionMarkDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// Cancellation is only possible before the parcel leaves the warehouse.
var cancellableStatuses = map[OrderStatus]bool{
	OrderStatusPending:    true,
	OrderStatusConfirmed:  true,
	OrderStatusProcessing: true,
	OrderStatusPacked:     true,
}

// NextStatus returns the deterministic successor of a fulfillment state, or
// ok=false for terminal states.
func NextStatus(s OrderStatus) (OrderStatus, bool) {
	next, ok := fulfillmentFlow[s]
	return next, ok
}

// AvailableActions lists the actions valid from a state. Terminal states
// yield an empty set.
func AvailableActions(s OrderStatus) []FulfillmentAction {
	actions, ok := fulfillmentActions[s]
	if !ok {
		return nil
	}
	out := make([]FulfillmentAction, len(actions))
	copy(out, actions)
	return out
}

// CanTransition reports whether from -> to is a legal order status change.
func CanTransition(from, to OrderStatus) bool {
	if to == OrderStatusCancelled {
		return cancellableStatuses[from]
	}
	next, ok := fulfillmentFlow[from]
	return ok && next == to
}

// IsTerminal reports whether no further transition leaves the state.
func IsTerminal(s OrderStatus) bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Return workflow: pending -> approved|rejected, then approved ->
// shipped_back -> received -> refunded. Cancellation is open from every
// pre-refund state.
var returnFlow = map[ReturnStatus][]ReturnStatus{
	ReturnStatusPending:     {ReturnStatusApproved, ReturnStatusRejected, ReturnStatusCancelled},
	ReturnStatusApproved:    {ReturnStatusShippedBack, ReturnStatusCancelled},
	ReturnStatusShippedBack: {ReturnStatusReceived, ReturnStatusCancelled},
	ReturnStatusReceived:    {ReturnStatusRefunded, ReturnStatusCancelled},
}

// CanTransitionReturn reports whether from -> to is legal in the return
// workflow.
func CanTransitionReturn(from, to ReturnStatus) bool {
	for _, next := range returnFlow[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextReturnStatuses lists the states reachable from the given one.
func NextReturnStatuses(s ReturnStatus) []ReturnStatus {
	out := make([]ReturnStatus, len(returnFlow[s]))
	copy(out, returnFlow[s])
	return out
}

// IsTerminalReturn reports whether the return workflow has finished.
func IsTerminalReturn(s ReturnStatus) bool {
	return s == ReturnStatusRejected || s == ReturnStatusRefunded || s == ReturnStatusCancelled
}
