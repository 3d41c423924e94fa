// Package snmptest provides an in-memory SNMP agent for tests.
package snmptest

import (
	"context"
	"errors"
	"time"

	"github.com/consol-monitoring/checkplugins/pkg/snmp"
	"github.com/gosnmp/gosnmp"
)

// Agent answers Get requests from a fixed set of variable bindings.
type Agent struct {
	Vars map[string]gosnmp.SnmpPDU

	// ErrorStatus is returned in every response if set.
	ErrorStatus gosnmp.SNMPError

	// Err is returned by every Get call if set.
	Err error

	// Requests records all requested OIDs.
	Requests []string

	// Opts records the options of the last dial.
	Opts *snmp.Opts
}

// NewAgent returns an agent serving the given variables.
func NewAgent(vars ...gosnmp.SnmpPDU) *Agent {
	agent := &Agent{Vars: map[string]gosnmp.SnmpPDU{}}
	for _, pdu := range vars {
		agent.Vars[pdu.Name] = pdu
	}

	return agent
}

func (a *Agent) Get(oids []string) (*gosnmp.SnmpPacket, error) {
	a.Requests = append(a.Requests, oids...)
	if a.Err != nil {
		return nil, a.Err
	}
	packet := &gosnmp.SnmpPacket{Error: a.ErrorStatus}
	for _, oid := range oids {
		pdu, ok := a.Vars[oid]
		if !ok {
			pdu = gosnmp.SnmpPDU{Name: oid, Type: gosnmp.NoSuchObject}
		}
		packet.Variables = append(packet.Variables, pdu)
	}

	return packet, nil
}

// Dialer returns a snmp.Dialer connecting to this agent.
func (a *Agent) Dialer() snmp.Dialer {
	return func(_ context.Context, opts *snmp.Opts, _ time.Duration) (snmp.Getter, func(), error) {
		a.Opts = opts

		return a, func() {}, nil
	}
}

// Unreachable returns a dialer which always fails.
func Unreachable(msg string) snmp.Dialer {
	return func(_ context.Context, _ *snmp.Opts, _ time.Duration) (snmp.Getter, func(), error) {
		return nil, nil, errors.New(msg)
	}
}

// OctetString creates a string variable binding.
func OctetString(oid, val string) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Name: oid, Type: gosnmp.OctetString, Value: []byte(val)}
}

// Bytes creates a binary octet string variable binding.
func Bytes(oid string, val []byte) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Name: oid, Type: gosnmp.OctetString, Value: val}
}

// Gauge creates a Gauge32 variable binding.
func Gauge(oid string, val uint) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Name: oid, Type: gosnmp.Gauge32, Value: val}
}

// Timeticks creates a TimeTicks variable binding.
func Timeticks(oid string, val uint32) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Name: oid, Type: gosnmp.TimeTicks, Value: val}
}
