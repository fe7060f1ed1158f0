package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindDuplicate: the product id is already registered.
	KindDuplicate
	// KindNotOwner: the signing account does not own the product.
	KindNotOwner
	// KindReverted: any other contract rejection.
	KindReverted
	KindTimeout
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindDuplicate:
		return "duplicate"
	case KindNotOwner:
		return "not_owner"
	case KindReverted:
		return "reverted"
	case KindTimeout:
		return "timeout"
	case KindUnavailable:
		return "unavailable"
	}
	return "unknown"
}

var (
	ErrDuplicate = errors.New("product already exists")
	ErrNotOwner  = errors.New("caller is not the current owner")
)

// Revert reasons emitted by the SupplyChain contract. Nodes and contract
// wrappers decorate them differently, so they are matched as substrings.
var revertKinds = []struct {
	reason string
	kind   Kind
}{
	{"Product already exists", KindDuplicate},
	{"Only current owner can transfer", KindNotOwner},
	{"Only current owner can update status", KindNotOwner},
}

// Error is returned by every Ledger method on failure.
type Error struct {
	Op     string
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("ledger %s: %s", e.Op, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ledger %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets callers test the business kinds with errors.Is(err, ErrDuplicate).
func (e *Error) Is(target error) bool {
	switch target {
	case ErrDuplicate:
		return e.Kind == KindDuplicate
	case ErrNotOwner:
		return e.Kind == KindNotOwner
	}
	return false
}

// KindOf returns the Kind of a ledger error, or KindUnknown.
func KindOf(err error) Kind {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind
	}
	return KindUnknown
}

// classifySubmit turns a Transact failure into an *Error. Gas estimation
// surfaces contract reverts here, before anything is broadcast.
func classifySubmit(op string, err error) *Error {
	if isContextErr(err) {
		return &Error{Op: op, Kind: KindTimeout, Err: err}
	}

	reason, reverted := revertReason(err)
	if known, kind, ok := matchRevert(reason, err.Error()); ok {
		if reason == "" {
			reason = known
		}
		return &Error{Op: op, Kind: kind, Reason: reason, Err: err}
	}
	if !reverted {
		return &Error{Op: op, Kind: KindUnavailable, Err: err}
	}
	return &Error{Op: op, Kind: KindReverted, Reason: reason, Err: err}
}

// matchRevert looks for a known contract reason in any of texts.
func matchRevert(texts ...string) (string, Kind, bool) {
	for _, rk := range revertKinds {
		for _, text := range texts {
			if strings.Contains(text, rk.reason) {
				return rk.reason, rk.kind, true
			}
		}
	}
	return "", KindUnknown, false
}

// revertReason extracts the Error(string) payload of a reverted call. The
// RPC error data is decoded when the node provides it; otherwise the reason
// is read from the "execution reverted: <reason>" message.
func revertReason(err error) (string, bool) {
	var de rpc.DataError
	if errors.As(err, &de) {
		if data, ok := de.ErrorData().(string); ok {
			if reason, uerr := abi.UnpackRevert(common.FromHex(data)); uerr == nil {
				return reason, true
			}
		}
	}

	const marker = "execution reverted"
	msg := err.Error()
	i := strings.Index(msg, marker)
	if i < 0 {
		return "", false
	}
	reason := strings.TrimPrefix(msg[i+len(marker):], ":")
	return strings.TrimSpace(reason), true
}
