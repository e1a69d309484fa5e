package adapter

import "github.com/prometheus/client_golang/prometheus"

// opCounter counts commands that passed validation, labelled by upper-cased
// command name and by the front end that received them.
var opCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "txkv_commands_total",
	Help: "Commands executed by the dispatcher, by command name and front end (repl or redis).",
}, []string{"command", "frontend"})

func init() {
	prometheus.MustRegister(opCounter)
}
