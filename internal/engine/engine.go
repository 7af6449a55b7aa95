// Package engine implements the token-sale settlement core: the collector
// and funder registries, role checks, the funding window guard, the order
// ledger, and the asynchronous price-resolution protocol. All state lives in
// memory in append-mostly indexed containers; one mutex serializes every
// state-changing call, so each operation is atomic and fully visible before
// the next is accepted.
package engine

import (
	"errors"
	"math/big"
	"sync"
	"time"
)

// DefaultMinContribution is 0.5 native units in raw (18-decimal) units.
var DefaultMinContribution = new(big.Int).Mul(big.NewInt(5), pow10(17))

// Params carries the deployment configuration, supplied once at
// construction and immutable thereafter except the oracle gas price.
type Params struct {
	StartTime time.Time // sale window start, inclusive
	EndTime   time.Time // sale window end, inclusive
	Wallet    string    // custody wallet receiving native contributions
	Owner     string
	Admins    []string

	// MinContribution in raw native units; DefaultMinContribution when nil.
	MinContribution *big.Int

	OracleGasPrice uint64
}

// QuoteRequest is handed to the oracle collaborator for each created order.
type QuoteRequest struct {
	RequestID  string
	OrderID    uint64
	PriceQuery string
	GasPrice   uint64
}

// QuoteRequester forwards quote requests to the external price oracle.
// RequestQuote is invoked while the engine lock is held and must not block
// or call back into the engine synchronously.
type QuoteRequester interface {
	RequestQuote(req QuoteRequest)
}

// Engine is the settlement core. Construct with New.
type Engine struct {
	mu sync.Mutex

	startTime       time.Time
	endTime         time.Time
	wallet          string
	minContribution *big.Int

	owner     string
	admins    map[string]struct{}
	refillers map[string]struct{}

	collectors []Collector

	direct         map[string]uint64 // sender address -> funder id
	funderAddr     map[uint64]string // reverse of direct
	kycFailed      map[uint64]struct{}
	failedKycCount uint64

	orders    []*Order
	purchased map[uint64]*big.Int

	requests map[string]uint64 // quote request id -> order id
	gasPrice uint64

	requester QuoteRequester
	notify    NotifyFunc
	now       func() time.Time
}

// New builds an engine from deployment parameters. requester and notify may
// be nil: without a requester, orders stay pending until a callback arrives
// through ApplyQuote with a known request id.
func New(p Params, requester QuoteRequester, notify NotifyFunc) (*Engine, error) {
	if !p.EndTime.After(p.StartTime) {
		return nil, errors.New("engine: end time must be after start time")
	}
	if p.Wallet == "" {
		return nil, errors.New("engine: custody wallet required")
	}
	if p.Owner == "" {
		return nil, errors.New("engine: owner address required")
	}

	minContribution := p.MinContribution
	if minContribution == nil {
		minContribution = DefaultMinContribution
	}

	admins := make(map[string]struct{}, len(p.Admins))
	for _, a := range p.Admins {
		admins[a] = struct{}{}
	}

	return &Engine{
		startTime:       p.StartTime,
		endTime:         p.EndTime,
		wallet:          p.Wallet,
		minContribution: new(big.Int).Set(minContribution),
		owner:           p.Owner,
		admins:          admins,
		refillers:       make(map[string]struct{}),
		direct:          make(map[string]uint64),
		funderAddr:      make(map[uint64]string),
		kycFailed:       make(map[uint64]struct{}),
		purchased:       make(map[uint64]*big.Int),
		requests:        make(map[string]uint64),
		gasPrice:        p.OracleGasPrice,
		requester:       requester,
		notify:          notify,
		now:             time.Now,
	}, nil
}

// StartTime returns the sale window start.
func (e *Engine) StartTime() time.Time { return e.startTime }

// EndTime returns the sale window end.
func (e *Engine) EndTime() time.Time { return e.endTime }

// Wallet returns the custody wallet address.
func (e *Engine) Wallet() string { return e.wallet }
