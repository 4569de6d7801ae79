package domain

import (
	"fmt"
	"time"
)

// OrderRecord is one row of the orders file.
type OrderRecord struct {
	Row       int    // 1-based data row number in the source file
	Reference string // optional "Order number" column, informational only
	Head      string
	Body      string
	Legs      string
	Address   string
}

// Label identifies the record in logs and summaries.
func (r OrderRecord) Label() string {
	if r.Reference != "" {
		return fmt.Sprintf("row %d (ref %s)", r.Row, r.Reference)
	}
	return fmt.Sprintf("row %d", r.Row)
}

// Receipt is produced once per successfully submitted order.
type Receipt struct {
	OrderNumber    string
	PDFPath        string
	ScreenshotPath string
}

// FormAction is the kind of interaction a FormStep performs.
type FormAction string

const (
	ActionSelect FormAction = "select"
	ActionCheck  FormAction = "check"
	ActionFill   FormAction = "fill"
)

// FormStep is a single form interaction derived from an OrderRecord.
type FormStep struct {
	Field    string // "head", "body", "legs", "address"
	Action   FormAction
	Selector string
	Value    string
}

// FormPlan is the ordered list of steps that fills the order form for one record.
type FormPlan struct {
	Record OrderRecord
	Steps  []FormStep
}

// OrderStatus is the final state of one order in a run.
type OrderStatus string

const (
	StatusSucceeded OrderStatus = "succeeded"
	StatusFailed    OrderStatus = "failed"
	StatusSkipped   OrderStatus = "skipped"
)

// OrderOutcome records what happened to one OrderRecord.
type OrderOutcome struct {
	Record        OrderRecord
	Status        OrderStatus
	Receipt       *Receipt
	SubmitClicks  int
	AdvanceReload bool // the "order another" control was missing and the page was reloaded
	Duration      time.Duration
	Err           error
}

// RunSummary collects the outcome of every order in source order.
type RunSummary struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Outcomes    []OrderOutcome
	ArchivePath string
}

// Count returns the number of outcomes with the given status.
func (s *RunSummary) Count(status OrderStatus) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Receipts returns the receipts of all successful orders, in source order.
func (s *RunSummary) Receipts() []Receipt {
	var out []Receipt
	for _, o := range s.Outcomes {
		if o.Receipt != nil {
			out = append(out, *o.Receipt)
		}
	}
	return out
}
