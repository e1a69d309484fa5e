package adapter

import (
	"context"
	"strings"

	"github.com/bootjp/txkv/store"
	"github.com/cockroachdb/errors"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrWrongArity     = errors.New("wrong number of arguments")
)

type handler func(ctx context.Context, args []string) Result

// command is one entry of the closed command table. arity counts the
// arguments after the command name.
type command struct {
	arity int
	run   handler
}

// Dispatcher resolves a command name to an engine operation. Names that are
// not in the table, and calls with the wrong number of arguments, are
// rejected before the engine is reached.
type Dispatcher struct {
	store  store.Store
	client string
	route  map[string]command
}

func NewDispatcher(st store.Store, client string) *Dispatcher {
	d := &Dispatcher{
		store:  st,
		client: client,
	}

	//nolint:mnd
	d.route = map[string]command{
		"SET":      {arity: 2, run: d.set},
		"GET":      {arity: 1, run: d.get},
		"UNSET":    {arity: 1, run: d.unset},
		"COUNTS":   {arity: 1, run: d.counts},
		"FIND":     {arity: 1, run: d.find},
		"BEGIN":    {arity: 0, run: d.begin},
		"ROLLBACK": {arity: 0, run: d.rollback},
		"COMMIT":   {arity: 0, run: d.commit},
	}

	return d
}

// Dispatch runs the named command. The name is matched case-insensitively.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args []string) (Result, error) {
	name = strings.ToUpper(name)
	cmd, ok := d.route[name]
	if !ok {
		return Result{}, errors.Wrapf(ErrUnknownCommand, "%s", name)
	}
	if err := validateCmd(name, cmd, args); err != nil {
		return Result{}, err
	}

	opCounter.WithLabelValues(name, d.client).Inc()
	return cmd.run(ctx, args), nil
}

func validateCmd(name string, cmd command, args []string) error {
	if len(args) != cmd.arity {
		return errors.Wrapf(ErrWrongArity, "%s expects %d, got %d", name, cmd.arity, len(args))
	}
	return nil
}

func (d *Dispatcher) set(ctx context.Context, args []string) Result {
	d.store.Set(ctx, args[0], args[1])
	return Result{Type: ResultOK}
}

func (d *Dispatcher) get(ctx context.Context, args []string) Result {
	v, err := d.store.Get(ctx, args[0])
	if errors.Is(err, store.ErrKeyNotFound) {
		return Result{Type: ResultNil}
	}
	return Result{Type: ResultBulk, Str: v}
}

func (d *Dispatcher) unset(ctx context.Context, args []string) Result {
	d.store.Unset(ctx, args[0])
	return Result{Type: ResultOK}
}

func (d *Dispatcher) counts(ctx context.Context, args []string) Result {
	return Result{Type: ResultInt, Int: int64(d.store.CountValue(ctx, args[0]))}
}

func (d *Dispatcher) find(ctx context.Context, args []string) Result {
	return Result{Type: ResultArray, Arr: d.store.FindKeysByValue(ctx, args[0])}
}

func (d *Dispatcher) begin(ctx context.Context, _ []string) Result {
	d.store.Begin(ctx)
	return Result{Type: ResultOK}
}

func (d *Dispatcher) rollback(ctx context.Context, _ []string) Result {
	d.store.Rollback(ctx)
	return Result{Type: ResultOK}
}

func (d *Dispatcher) commit(ctx context.Context, _ []string) Result {
	d.store.Commit(ctx)
	return Result{Type: ResultOK}
}
