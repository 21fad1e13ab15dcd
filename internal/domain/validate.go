package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateOrder checks a candidate order before any write is issued. Every
// rule is evaluated; all violations are reported in order, none short-circuit.
// Callers must not persist an order that fails validation.
func ValidateOrder(o *Order) ValidationResult {
	var errs []string

	if strings.TrimSpace(o.CustomerID) == "" {
		errs = append(errs, "Customer ID is required")
	}

	if len(o.Items) == 0 {
		errs = append(errs, "Order must have at least one item")
	}

	addr := o.ShippingAddress
	if strings.TrimSpace(addr.Street) == "" {
		errs = append(errs, "Street address is required")
	}
	if strings.TrimSpace(addr.City) == "" {
		errs = append(errs, "City is required")
	}
	if strings.TrimSpace(addr.State) == "" {
		errs = append(errs, "State is required")
	}
	switch {
	case strings.TrimSpace(addr.Zip) == "":
		errs = append(errs, "ZIP code is required")
	case !zipPattern.MatchString(addr.Zip):
		errs = append(errs, "Invalid ZIP code format")
	}

	if strings.TrimSpace(string(o.PaymentMethod)) == "" {
		errs = append(errs, "Payment method is required")
	} else if !o.PaymentMethod.Valid() {
		errs = append(errs, "Invalid payment method")
	}

	for i, it := range o.Items {
		if it.Quantity <= 0 {
			errs = append(errs, fmt.Sprintf("Item %d: Quantity must be greater than 0", i+1))
		}
		if !it.UnitPrice.IsPositive() {
			errs = append(errs, fmt.Sprintf("Item %d: Unit price must be greater than 0", i+1))
		}
	}

	// Totals invariant: a discount may never push the total below zero.
	if len(o.Items) > 0 {
		b := ComputeTotals(o.Items, TotalsOptions{Discount: o.Discount})
		if b.Total.IsNegative() {
			errs = append(errs, "Discount cannot exceed order total")
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
