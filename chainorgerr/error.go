// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainorgerr defines the result codes the organization core
// returns to callers: rejection, transient, and fatal.
package chainorgerr

import "fmt"

// ErrorCode identifies a kind of result.
type ErrorCode int

// These constants identify the specific outcomes an organize call can
// produce.
const (
	// Success indicates the header or transaction was accepted and
	// committed.
	Success ErrorCode = iota

	// ErrDuplicateBlock indicates the header already exists in the
	// header pool or FastChain, or that its parent is neither pooled
	// nor indexed (the orphan case collapses here by default).
	ErrDuplicateBlock

	// ErrOrphanBlock indicates the header's parent is neither pooled nor
	// indexed. Only returned when chainorgcfg.Config.DistinguishOrphans
	// is enabled; otherwise orphans surface as ErrDuplicateBlock.
	ErrOrphanBlock

	// ErrInsufficientWork indicates the branch is well-formed and valid
	// but does not out-work the stored candidate chain above the same
	// fork point.
	ErrInsufficientWork

	// ErrServiceStopped indicates the organizer was stopped; the input
	// may be retried after restart.
	ErrServiceStopped

	// ErrOperationFailed is the FastChain.GetWork sentinel for "could not
	// compute", treated as fatal.
	ErrOperationFailed

	// ErrDuplicateTransaction indicates the transaction is already
	// memory pooled.
	ErrDuplicateTransaction

	// ErrInsufficientFee indicates the transaction's fee does not meet
	// the configured byte/sigop floor.
	ErrInsufficientFee

	// ErrDustyTransaction indicates an output is below the dust
	// threshold.
	ErrDustyTransaction

	// ErrReorganizeFailed indicates FastChain.Reorganize returned an
	// error; the store is presumed corrupted.
	ErrReorganizeFailed

	// ErrStoreFailed indicates FastChain.Store returned an error; the
	// store is presumed corrupted.
	ErrStoreFailed

	// Header validator rule codes.
	ErrInvalidTimestamp
	ErrInvalidDifficultyBits
	ErrTimeTooOld
	ErrTimeTooNew
	ErrUnexpectedDifficulty
	ErrBadVersion
	ErrInactiveRule

	// Transaction validator rule codes.
	ErrNoTxInputs
	ErrNoTxOutputs
	ErrTxTooBig
	ErrNullInput
	ErrBadAmount
	ErrMissingPrevout
)

var errorCodeStrings = map[ErrorCode]string{
	Success:                  "Success",
	ErrDuplicateBlock:        "ErrDuplicateBlock",
	ErrOrphanBlock:           "ErrOrphanBlock",
	ErrInsufficientWork:      "ErrInsufficientWork",
	ErrServiceStopped:        "ErrServiceStopped",
	ErrOperationFailed:       "ErrOperationFailed",
	ErrDuplicateTransaction:  "ErrDuplicateTransaction",
	ErrInsufficientFee:       "ErrInsufficientFee",
	ErrDustyTransaction:      "ErrDustyTransaction",
	ErrReorganizeFailed:      "ErrReorganizeFailed",
	ErrStoreFailed:           "ErrStoreFailed",
	ErrInvalidTimestamp:      "ErrInvalidTimestamp",
	ErrInvalidDifficultyBits: "ErrInvalidDifficultyBits",
	ErrTimeTooOld:            "ErrTimeTooOld",
	ErrTimeTooNew:            "ErrTimeTooNew",
	ErrUnexpectedDifficulty:  "ErrUnexpectedDifficulty",
	ErrBadVersion:            "ErrBadVersion",
	ErrInactiveRule:          "ErrInactiveRule",
	ErrNoTxInputs:            "ErrNoTxInputs",
	ErrNoTxOutputs:           "ErrNoTxOutputs",
	ErrTxTooBig:              "ErrTxTooBig",
	ErrNullInput:             "ErrNullInput",
	ErrBadAmount:             "ErrBadAmount",
	ErrMissingPrevout:        "ErrMissingPrevout",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a rejection, transient condition, or fatal
// failure surfaced from the organization pipelines. The caller can
// type-assert to RuleError and inspect ErrorCode to branch on the
// specific outcome.
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface.
func (e RuleError) Error() string {
	if e.Description == "" {
		return e.ErrorCode.String()
	}
	return e.Description
}

// New creates a RuleError given a code and a description.
func New(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}

// IsFatal reports whether the code indicates the store is presumed
// corrupted and the process is expected to exit.
func (e ErrorCode) IsFatal() bool {
	return e == ErrOperationFailed || e == ErrReorganizeFailed || e == ErrStoreFailed
}

// Code extracts the ErrorCode from err: Success with ok=true if err is
// nil, the RuleError's code with ok=true, or Success with ok=false for
// an error that is not a RuleError.
func Code(err error) (ErrorCode, bool) {
	if err == nil {
		return Success, true
	}
	if re, ok := err.(RuleError); ok {
		return re.ErrorCode, true
	}
	return Success, false
}
