package adapter

import (
	"context"
	"log/slog"
	"net"
	"strings"

	"github.com/bootjp/txkv/store"
	"github.com/cockroachdb/errors"
	"github.com/tidwall/redcon"
)

// RedisServer serves the command table over RESP. Every connection shares
// the same store, and therefore the same transaction stack.
type RedisServer struct {
	listen     net.Listener
	dispatcher *Dispatcher
	log        *slog.Logger
}

func NewRedisServer(listen net.Listener, st store.Store) *RedisServer {
	return &RedisServer{
		listen:     listen,
		dispatcher: NewDispatcher(st, "redis"),
		log:        slog.Default(),
	}
}

func (r *RedisServer) Run() error {
	err := redcon.Serve(r.listen,
		r.handle,
		func(conn redcon.Conn) bool {
			r.log.Debug("accept", slog.String("remote", conn.RemoteAddr()))
			return true
		},
		func(conn redcon.Conn, err error) {
			r.log.Debug("closed", slog.String("remote", conn.RemoteAddr()))
		})
	if errors.Is(err, net.ErrClosed) {
		return nil
	}

	return errors.WithStack(err)
}

func (r *RedisServer) Stop() {
	_ = r.listen.Close()
}

func (r *RedisServer) handle(conn redcon.Conn, cmd redcon.Command) {
	name := string(cmd.Args[0])
	if strings.EqualFold(name, "PING") {
		conn.WriteString("PONG")
		return
	}

	args := make([]string, 0, len(cmd.Args)-1)
	for _, a := range cmd.Args[1:] {
		args = append(args, string(a))
	}

	res, err := r.dispatcher.Dispatch(context.Background(), name, args)
	switch {
	case errors.Is(err, ErrUnknownCommand):
		conn.WriteError("ERR unknown command '" + name + "'")
		return
	case errors.Is(err, ErrWrongArity):
		conn.WriteError("ERR wrong number of arguments for '" + name + "' command")
		return
	case err != nil:
		conn.WriteError("ERR " + err.Error())
		return
	}

	writeResult(conn, res)
}

func writeResult(conn redcon.Conn, res Result) {
	switch res.Type {
	case ResultOK:
		conn.WriteString("OK")
	case ResultNil:
		conn.WriteNull()
	case ResultBulk:
		conn.WriteBulkString(res.Str)
	case ResultInt:
		conn.WriteInt64(res.Int)
	case ResultArray:
		conn.WriteArray(len(res.Arr))
		for _, s := range res.Arr {
			conn.WriteBulkString(s)
		}
	}
}
