package snmp

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/consol-monitoring/checkplugins/pkg/convert"
	"github.com/consol-monitoring/checkplugins/pkg/logger"
	"github.com/consol-monitoring/checkplugins/pkg/plugin"
	"github.com/consol-monitoring/checkplugins/pkg/utils"
	"github.com/gosnmp/gosnmp"
)

// Opts contains the SNMP target options shared by all SNMP based checks.
type Opts struct {
	Host        string `short:"H" long:"host" required:"true" description:"host to check, ex.: 127.0.0.1"`
	Community   string `short:"C" long:"community" required:"true" description:"SNMP community password"`
	Port        uint16 `long:"port" default:"161" description:"SNMP port"`
	SNMPVersion string `long:"snmp-version" default:"2c" choice:"1" choice:"2c" description:"SNMP protocol version"`
}

// Getter fetches single OIDs. It is implemented by *gosnmp.GoSNMP.
type Getter interface {
	Get(oids []string) (*gosnmp.SnmpPacket, error)
}

// Dialer opens a Getter for the given options. The returned close function
// must be called when done.
type Dialer func(ctx context.Context, opts *Opts, timeout time.Duration) (Getter, func(), error)

// Connect opens a UDP session to the target described by opts.
func Connect(ctx context.Context, opts *Opts, timeout time.Duration) (Getter, func(), error) {
	version := gosnmp.Version2c
	if opts.SNMPVersion == "1" {
		version = gosnmp.Version1
	}
	client := &gosnmp.GoSNMP{
		Target:    opts.Host,
		Port:      opts.Port,
		Community: opts.Community,
		Version:   version,
		Timeout:   timeout,
		Retries:   0,
		Context:   ctx,
	}
	logger.Log.Debugf("snmp: connecting to %s:%d (version %s)", opts.Host, opts.Port, opts.SNMPVersion)
	if err := client.Connect(); err != nil {
		return nil, nil, plugin.ProtocolError(fmt.Errorf("snmp connect to %s failed: %s", opts.Host, err.Error()))
	}

	return client, func() { client.Conn.Close() }, nil
}

// Fetch connects to the target and fetches each OID with a separate request.
// Any failure is returned as protocol error.
func Fetch(ctx context.Context, dial Dialer, opts *Opts, timeout time.Duration, oids ...string) ([]gosnmp.SnmpPDU, error) {
	if dial == nil {
		dial = Connect
	}
	getter, closeFn, err := dial(ctx, opts, timeout)
	if err != nil {
		var collectErr *plugin.CollectionError
		if errors.As(err, &collectErr) {
			return nil, err
		}

		return nil, plugin.ProtocolError(err)
	}
	defer closeFn()

	pdus := make([]gosnmp.SnmpPDU, 0, len(oids))
	for _, oid := range oids {
		pdu, err := GetOne(getter, oid)
		if err != nil {
			return nil, err
		}
		pdus = append(pdus, pdu)
	}

	return pdus, nil
}

// GetOne fetches a single OID and returns its variable binding.
// Transport errors, error-status responses and missing objects are returned
// as protocol errors.
func GetOne(getter Getter, oid string) (gosnmp.SnmpPDU, error) {
	logger.Log.Tracef("snmp: get %s", oid)
	packet, err := getter.Get([]string{oid})
	if err != nil {
		return gosnmp.SnmpPDU{}, plugin.ProtocolError(fmt.Errorf("snmp get %s failed: %s", oid, err.Error()))
	}
	if packet.Error != gosnmp.NoError {
		return gosnmp.SnmpPDU{}, plugin.ProtocolError(fmt.Errorf("snmp error: %v (index %d) for %s", packet.Error, packet.ErrorIndex, oid))
	}
	if len(packet.Variables) == 0 {
		return gosnmp.SnmpPDU{}, plugin.ProtocolError(fmt.Errorf("snmp error: empty response for %s", oid))
	}

	pdu := packet.Variables[0]
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return gosnmp.SnmpPDU{}, plugin.ProtocolError(fmt.Errorf("snmp error: %s for %s", pdu.Type.String(), oid))
	}
	logger.Log.Tracef("snmp: %s = %s %v", pdu.Name, pdu.Type.String(), pdu.Value)

	return pdu, nil
}

// Float64 converts numeric and octet string values into a float.
func Float64(pdu gosnmp.SnmpPDU) (float64, error) {
	switch pdu.Type {
	case gosnmp.OctetString:
		num, err := convert.Float64E(pdu.Value)
		if err != nil {
			return 0, plugin.FormatErrorf("cannot parse %s value %q: %s", pdu.Name, String(pdu), err.Error())
		}

		return num, nil
	case gosnmp.Integer, gosnmp.Counter32, gosnmp.Gauge32, gosnmp.TimeTicks, gosnmp.Counter64, gosnmp.Uinteger32:
		num, _ := new(big.Float).SetInt(gosnmp.ToBigInt(pdu.Value)).Float64()

		return num, nil
	}

	return 0, plugin.FormatErrorf("unexpected type %s for %s", pdu.Type.String(), pdu.Name)
}

// String returns octet strings as text and everything else in its default format.
func String(pdu gosnmp.SnmpPDU) string {
	if raw, ok := pdu.Value.([]byte); ok {
		return string(raw)
	}

	return fmt.Sprintf("%v", pdu.Value)
}

// Timeticks returns the hundredths of seconds of a TimeTicks value as duration.
func Timeticks(pdu gosnmp.SnmpPDU) (time.Duration, error) {
	if pdu.Type != gosnmp.TimeTicks {
		return 0, plugin.FormatErrorf("unexpected type %s for %s, expected TimeTicks", pdu.Type.String(), pdu.Name)
	}

	return utils.TimeticksToDuration(gosnmp.ToBigInt(pdu.Value).Uint64()), nil
}
