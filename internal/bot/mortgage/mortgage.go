// Package mortgage implements the chat-triggered mortgage payment
// calculator: standard amortization over monthly compounding.
package mortgage

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// TriggerPhrase activates the calculator when present in a message.
const TriggerPhrase = "calculate mortgage"

// Usage explains the expected message shape when the trigger carries no
// usable numbers.
const Usage = "Let's crunch it! Send: calculate mortgage <amount> <rate%> <years> - e.g. \"calculate mortgage 300000 6.5 30\"."

// Request is a parsed calculation request.
type Request struct {
	// Amount is the loan principal in dollars.
	Amount float64
	// AnnualRate is the yearly interest rate in percent.
	AnnualRate float64
	// Years is the loan term.
	Years int
}

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseRequest extracts the first three numbers after the trigger phrase as
// amount, annual rate, and term. Returns false when the message does not
// contain the trigger or carries fewer than three numbers.
func ParseRequest(message string) (Request, bool) {
	lower := strings.ToLower(message)
	idx := strings.Index(lower, TriggerPhrase)
	if idx < 0 {
		return Request{}, false
	}

	nums := numberPattern.FindAllString(lower[idx+len(TriggerPhrase):], 3)
	if len(nums) < 3 {
		return Request{}, false
	}

	amount, err1 := strconv.ParseFloat(nums[0], 64)
	rate, err2 := strconv.ParseFloat(nums[1], 64)
	years, err3 := strconv.ParseFloat(nums[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return Request{}, false
	}

	return Request{Amount: amount, AnnualRate: rate, Years: int(years)}, true
}

// MonthlyPayment returns the fixed monthly payment for the request using
// the standard amortization formula with monthly compounding. A zero rate
// degenerates to principal divided by term.
func MonthlyPayment(req Request) (float64, error) {
	if req.Amount <= 0 {
		return 0, fmt.Errorf("mortgage: amount must be positive, got %v", req.Amount)
	}
	if req.AnnualRate < 0 {
		return 0, fmt.Errorf("mortgage: rate must not be negative, got %v", req.AnnualRate)
	}
	if req.Years <= 0 {
		return 0, fmt.Errorf("mortgage: term must be positive, got %d years", req.Years)
	}

	months := float64(req.Years * 12)
	if req.AnnualRate == 0 {
		return req.Amount / months, nil
	}

	monthlyRate := req.AnnualRate / 100 / 12
	growth := math.Pow(1+monthlyRate, months)
	return req.Amount * monthlyRate * growth / (growth - 1), nil
}

// Reply formats the calculation result, or the usage hint when the numbers
// are unusable.
func Reply(req Request) string {
	payment, err := MonthlyPayment(req)
	if err != nil {
		return Usage
	}
	return fmt.Sprintf("Monthly payment: $%.2f - that's $%.0f at %.2f%% over %d years. Wanna compare a DeFi loan?",
		payment, req.Amount, req.AnnualRate, req.Years)
}
