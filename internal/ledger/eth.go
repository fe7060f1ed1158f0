package ledger

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

//go:embed SupplyChainABI.json
var supplyChainABI string

// DefaultWaitTimeout bounds how long a submitted transaction may take to be mined.
const DefaultWaitTimeout = 2 * time.Minute

// Config holds client configuration.
type Config struct {
	RPCURL          string
	PrivateKey      string
	ContractAddress string
	WaitTimeout     time.Duration
}

type transactor interface {
	Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error)
}

type minedWaiter func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)

// EthLedger talks to the SupplyChain contract on an EVM chain.
type EthLedger struct {
	// mu serializes submissions so the pending nonce read by Transact
	// already accounts for the previous transaction.
	mu          sync.Mutex
	contract    transactor
	auth        *bind.TransactOpts
	waitMined   minedWaiter
	waitTimeout time.Duration
	close       func()
}

// Dial connects to the RPC endpoint, loads the signing key and binds the contract.
func Dial(ctx context.Context, cfg Config) (*EthLedger, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("ledger RPC URL required")
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.ContractAddress)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("load signing key: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(supplyChainABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract ABI: %w", err)
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial ledger: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create transactor: %w", err)
	}

	contract := bind.NewBoundContract(common.HexToAddress(cfg.ContractAddress), parsed, client, client, client)
	waiter := func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
		return bind.WaitMined(ctx, client, tx)
	}

	l := newEthLedger(contract, auth, waiter, cfg.WaitTimeout)
	l.close = client.Close
	return l, nil
}

func newEthLedger(contract transactor, auth *bind.TransactOpts, wait minedWaiter, timeout time.Duration) *EthLedger {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	return &EthLedger{
		contract:    contract,
		auth:        auth,
		waitMined:   wait,
		waitTimeout: timeout,
	}
}

// Sender is the address transactions are signed with.
func (l *EthLedger) Sender() string {
	return l.auth.From.Hex()
}

func (l *EthLedger) Close() {
	if l.close != nil {
		l.close()
	}
}

func (l *EthLedger) Create(ctx context.Context, productID uint64, owner string) (*Receipt, error) {
	return l.submit(ctx, OpCreate, "addProduct", new(big.Int).SetUint64(productID), common.HexToAddress(owner))
}

func (l *EthLedger) Transfer(ctx context.Context, productID uint64, newOwner string) (*Receipt, error) {
	return l.submit(ctx, OpTransfer, "transferOwnership", new(big.Int).SetUint64(productID), common.HexToAddress(newOwner))
}

func (l *EthLedger) SetStatus(ctx context.Context, productID uint64, code uint8) (*Receipt, error) {
	return l.submit(ctx, OpStatus, "updateStatus", new(big.Int).SetUint64(productID), code)
}

func (l *EthLedger) submit(ctx context.Context, op, method string, params ...interface{}) (*Receipt, error) {
	l.mu.Lock()
	opts := *l.auth
	opts.Context = ctx
	tx, err := l.contract.Transact(&opts, method, params...)
	l.mu.Unlock()
	if err != nil {
		return nil, classifySubmit(op, err)
	}

	wctx, cancel := context.WithTimeout(ctx, l.waitTimeout)
	defer cancel()

	receipt, err := l.waitMined(wctx, tx)
	if err != nil {
		kind := KindUnavailable
		if isContextErr(err) {
			kind = KindTimeout
		}
		return nil, &Error{Op: op, Kind: kind, Err: fmt.Errorf("wait for %s: %w", tx.Hash().Hex(), err)}
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &Error{Op: op, Kind: KindReverted, Reason: fmt.Sprintf("transaction %s reverted", tx.Hash().Hex())}
	}

	r := &Receipt{
		TxHash:  tx.Hash().Hex(),
		GasUsed: receipt.GasUsed,
	}
	if receipt.BlockNumber != nil {
		r.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return r, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
