package execnow

import (
	"errors"

	"github.com/HerbHall/pollnow/pkg/models"
)

// Kind classifies the result of an Execute now request.
type Kind string

const (
	KindAccepted          Kind = "accepted"
	KindPartiallyAccepted Kind = "partially_accepted"
	KindRejected          Kind = "rejected"
)

// Reason explains why a selection was rejected.
type Reason string

const (
	ReasonNone                   Reason = ""
	ReasonWrongMasterType        Reason = "wrong_master_type"
	ReasonWrongItemType          Reason = "wrong_item_type"
	ReasonWrongDiscoveryRuleType Reason = "wrong_discovery_rule_type"
	ReasonEmptySelection         Reason = "empty_selection"
)

// User-facing messages rendered by the console and returned by the API.
const (
	MessageSent         = "Request sent successfully"
	MessageSentFiltered = "Request sent successfully. Some items are filtered due to access permissions or type."
	TitleRejected       = "Cannot execute operation"
)

// Sentinel errors wrapped by RejectedError.
var (
	ErrWrongMasterType        = errors.New("wrong master item type")
	ErrWrongItemType          = errors.New("wrong item type")
	ErrWrongDiscoveryRuleType = errors.New("wrong discovery rule type")
	ErrEmptySelection         = errors.New("nothing selected")
)

// RejectedError is the error form of a rejected Outcome.
type RejectedError struct {
	Reason Reason
	err    error
}

func (e *RejectedError) Error() string {
	return "Cannot send request: " + e.err.Error() + "."
}

func (e *RejectedError) Unwrap() error {
	return e.err
}

// Outcome is the aggregate decision for one selection.
type Outcome struct {
	Kind   Kind
	Reason Reason // set only when Kind is KindRejected

	// Eligible is the subset that would be dispatched. Filtered holds the rest.
	Eligible []models.MonitoredObject
	Filtered []models.MonitoredObject
}

// Accepted reports whether the request is sent (fully or partially).
func (o Outcome) Accepted() bool {
	return o.Kind == KindAccepted || o.Kind == KindPartiallyAccepted
}

// ActedUpon returns the number of objects a poll is dispatched for.
func (o Outcome) ActedUpon() int {
	if !o.Accepted() {
		return 0
	}
	return len(o.Eligible)
}

// Message returns the notification text shown to the operator.
func (o Outcome) Message() string {
	switch o.Kind {
	case KindAccepted:
		return MessageSent
	case KindPartiallyAccepted:
		return MessageSentFiltered
	default:
		return o.Err().Error()
	}
}

// Err returns a *RejectedError for rejected outcomes and nil otherwise.
func (o Outcome) Err() error {
	if o.Accepted() {
		return nil
	}
	return &RejectedError{Reason: o.Reason, err: reasonErr(o.Reason)}
}

func reasonErr(r Reason) error {
	switch r {
	case ReasonWrongMasterType:
		return ErrWrongMasterType
	case ReasonWrongDiscoveryRuleType:
		return ErrWrongDiscoveryRuleType
	case ReasonEmptySelection:
		return ErrEmptySelection
	default:
		return ErrWrongItemType
	}
}
