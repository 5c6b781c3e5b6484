package settings

import (
	"github.com/proxydesk/proxydesk-terminal/pkg/events"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
)

// Signal asks the backend to restart one of its services
type Signal string

const (
	SignalServer Signal = "reconnect-server"
	SignalHTTP   Signal = "reconnect-http"
	SignalPac    Signal = "reconnect-pac"
)

// Topic is the bus topic the signal is published on
func (s Signal) Topic() events.Topic {
	switch s {
	case SignalServer:
		return events.TopicReconnectServer
	case SignalHTTP:
		return events.TopicReconnectHTTP
	default:
		return events.TopicReconnectPac
	}
}

type reconnectRule struct {
	signal   Signal
	triggers []models.Field
}

// reconnectTable maps each signal to the fields that require it. Order
// here is the order signals are emitted in. FieldWholeSettings triggers
// every row.
var reconnectTable = []reconnectRule{
	{
		signal: SignalServer,
		triggers: []models.Field{
			models.FieldLocalPort,
			models.FieldPacPort,
			models.FieldVerbose,
			models.FieldACL,
			models.FieldACLRules,
			models.FieldPac,
		},
	},
	{
		signal: SignalHTTP,
		triggers: []models.Field{
			models.FieldLocalPort,
			models.FieldHTTPProxyPort,
			models.FieldHTTPProxy,
		},
	},
	{
		signal: SignalPac,
		triggers: []models.Field{
			models.FieldPacPort,
		},
	},
}

// ReconnectPolicy returns the signals a set of touched fields requires,
// each at most once, in table order
func ReconnectPolicy(touched []models.Field) []Signal {
	set := make(map[models.Field]bool, len(touched))
	for _, f := range touched {
		set[f] = true
	}

	signals := []Signal{}
	for _, rule := range reconnectTable {
		if set[models.FieldWholeSettings] || anyTouched(set, rule.triggers) {
			signals = append(signals, rule.signal)
		}
	}
	return signals
}

func anyTouched(set map[models.Field]bool, triggers []models.Field) bool {
	for _, f := range triggers {
		if set[f] {
			return true
		}
	}
	return false
}
