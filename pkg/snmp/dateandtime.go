package snmp

import (
	"fmt"
	"time"

	"github.com/consol-monitoring/checkplugins/pkg/plugin"
	"github.com/gosnmp/gosnmp"
)

// ParseDateAndTime decodes a DateAndTime octet string (RFC 2579) as returned
// for hrSystemDate.
//
//	octets  contents
//	1-2     year (network byte order)
//	3       month
//	4       day
//	5       hour
//	6       minutes
//	7       seconds
//	8       deci-seconds
//	9       direction from UTC, '+' or '-'
//	10      hours from UTC
//	11      minutes from UTC
//
// The time zone octets are optional, without them the time is assumed to be UTC.
func ParseDateAndTime(raw []byte) (time.Time, error) {
	if len(raw) != 8 && len(raw) != 11 {
		return time.Time{}, fmt.Errorf("invalid DateAndTime length %d: % x", len(raw), raw)
	}

	year := int(raw[0])<<8 | int(raw[1])
	month := int(raw[2])
	day := int(raw[3])
	hour := int(raw[4])
	minute := int(raw[5])
	sec := int(raw[6])
	deci := int(raw[7])
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || sec > 60 || deci > 9 {
		return time.Time{}, fmt.Errorf("invalid DateAndTime value: % x", raw)
	}

	loc := time.UTC
	if len(raw) == 11 {
		offset := int(raw[9])*3600 + int(raw[10])*60
		switch raw[8] {
		case '+':
		case '-':
			offset = -offset
		default:
			return time.Time{}, fmt.Errorf("invalid DateAndTime direction %q", raw[8])
		}
		if raw[9] > 13 || raw[10] > 59 {
			return time.Time{}, fmt.Errorf("invalid DateAndTime offset: % x", raw[8:])
		}
		loc = time.FixedZone(fmt.Sprintf("%c%02d:%02d", raw[8], raw[9], raw[10]), offset)
	}

	return time.Date(year, time.Month(month), day, hour, minute, sec, deci*int(100*time.Millisecond), loc).UTC(), nil
}

// DateAndTime returns the UTC time of a DateAndTime variable binding.
func DateAndTime(pdu gosnmp.SnmpPDU) (time.Time, error) {
	raw, ok := pdu.Value.([]byte)
	if pdu.Type != gosnmp.OctetString || !ok {
		return time.Time{}, plugin.FormatErrorf("unexpected type %s for %s, expected DateAndTime", pdu.Type.String(), pdu.Name)
	}
	date, err := ParseDateAndTime(raw)
	if err != nil {
		return time.Time{}, plugin.FormatErrorf("%s: %w", pdu.Name, err)
	}

	return date, nil
}
