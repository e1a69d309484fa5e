package adapter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bootjp/txkv/store"
	"github.com/cockroachdb/errors"
)

const (
	replBanner = "Welcome to txkv! Type HELP for help."
	replPrompt = " -> "
	replExit   = "Exiting database..."
)

const replHelp = `
Enter a command name followed by its key and/or value, separated by
whitespace.

Commands:
    SET    - Store a key and its value. (Example: SET A 10)
    GET    - Get the value of a key, NULL if absent. (Example: GET A)
    UNSET  - Remove a key. (Example: UNSET A)
    COUNTS - Count keys holding a value. (Example: COUNTS 10)
    FIND   - List keys holding a value. (Example: FIND 10)
    END    - Exit.

Transactions:
    BEGIN    - Open a new, possibly nested, transaction.
    ROLLBACK - Undo the innermost open transaction.
    COMMIT   - Commit every open transaction.
`

// replMaxLine bounds a single input line. Values are arbitrary strings, so it
// is far above bufio's 64 KiB default.
const replMaxLine = 64 << 20

// REPL is the line interpreter: one command per line, results printed one
// per line.
type REPL struct {
	dispatcher *Dispatcher
	in         *bufio.Scanner
	out        io.Writer
	err        error
}

func NewREPL(st store.Store, in io.Reader, out io.Writer) *REPL {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), replMaxLine)
	return &REPL{
		dispatcher: NewDispatcher(st, "repl"),
		in:         sc,
		out:        out,
	}
}

// Run reads until END, end of input or ctx is done. Input is scanned on its
// own goroutine so a cancelled ctx ends Run even while a read is blocked.
func (r *REPL) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	lines, scanErr := r.readLines(done)

	r.println(replBanner)

	for r.err == nil {
		if ctx.Err() != nil {
			return nil
		}

		r.print(replPrompt)
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				if err := *scanErr; err != nil {
					return errors.WithStack(err)
				}
				return r.err
			}
			line = l
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch strings.ToUpper(fields[0]) {
		case "HELP":
			r.println(replHelp)
			continue
		case "END":
			r.println(replExit)
			return r.err
		}

		r.execute(ctx, fields[0], fields[1:])
	}

	return r.err
}

// readLines feeds scanned lines to the returned channel until input ends or
// done is closed. The scan error is readable once the channel is closed.
func (r *REPL) readLines(done <-chan struct{}) (<-chan string, *error) {
	lines := make(chan string)
	var scanErr error
	go func() {
		defer close(lines)
		for r.in.Scan() {
			select {
			case lines <- r.in.Text():
			case <-done:
				return
			}
		}
		scanErr = r.in.Err()
	}()
	return lines, &scanErr
}

func (r *REPL) execute(ctx context.Context, name string, args []string) {
	res, err := r.dispatcher.Dispatch(ctx, name, args)
	switch {
	case errors.Is(err, ErrUnknownCommand):
		r.println(replPrompt + "Invalid command name. Type HELP for the list of commands.")
		return
	case errors.Is(err, ErrWrongArity):
		r.println(replPrompt + "Invalid number of arguments for " + strings.ToUpper(name))
		return
	case err != nil:
		r.println(replPrompt + err.Error())
		return
	}

	switch res.Type {
	case ResultOK:
	case ResultNil:
		r.println("NULL")
	case ResultBulk:
		r.println(res.Str)
	case ResultInt:
		r.println(strconv.FormatInt(res.Int, 10))
	case ResultArray:
		r.println(strings.Join(res.Arr, " "))
	}
}

// print and println keep the first write error; Run stops on it.
func (r *REPL) print(s string) {
	if r.err != nil {
		return
	}
	if _, err := io.WriteString(r.out, s); err != nil {
		r.err = errors.WithStack(err)
	}
}

func (r *REPL) println(s string) {
	if r.err != nil {
		return
	}
	if _, err := fmt.Fprintln(r.out, s); err != nil {
		r.err = errors.WithStack(err)
	}
}
