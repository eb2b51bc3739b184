// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package sbus

import "fmt"

// RealTimeClock is the eight-field calendar/time value read from and
// written to a station's real-time clock. Each field is a plain decimal
// value in memory; on the wire each is re-encoded as a single byte whose
// hex digits are the field's decimal digits (in-memory 42 <-> wire 0x42).
type RealTimeClock struct {
	Week    uint8
	WeekDay uint8
	Year    uint8
	Month   uint8
	Day     uint8
	Hour    uint8
	Minute  uint8
	Second  uint8
}

// Encode appends the BCD-style encoding of sf to e. Fields whose value is
// not representable as two decimal digits (> 99) fail with ErrOverflow.
func (sf RealTimeClock) Encode(e *Encoder) error {
	write := func(v uint8) error {
		if v > 99 {
			return ErrOverflow
		}
		e.WriteU8(v/10<<4 | v%10)
		return nil
	}
	for _, v := range []uint8{sf.Week, sf.WeekDay, sf.Year, sf.Month, sf.Day, sf.Hour, sf.Minute, sf.Second} {
		if err := write(v); err != nil {
			return err
		}
	}
	return nil
}

// DecodeRealTimeClock reads the BCD-style encoding of a RealTimeClock from
// d. A byte whose nibbles contain a hex digit A-F is not a valid decimal
// digit pair and fails with an InvalidDataError.
func DecodeRealTimeClock(d *Decoder) (RealTimeClock, error) {
	read := func() (uint8, error) {
		b, err := d.ReadU8()
		if err != nil {
			return 0, err
		}
		hi, lo := b>>4, b&0x0F
		if hi > 9 || lo > 9 {
			return 0, NewInvalidDataError("Invalid time data")
		}
		return hi*10 + lo, nil
	}

	var fields [8]uint8
	for i := range fields {
		v, err := read()
		if err != nil {
			return RealTimeClock{}, err
		}
		fields[i] = v
	}
	return RealTimeClock{
		Week:    fields[0],
		WeekDay: fields[1],
		Year:    fields[2],
		Month:   fields[3],
		Day:     fields[4],
		Hour:    fields[5],
		Minute:  fields[6],
		Second:  fields[7],
	}, nil
}

func (sf RealTimeClock) String() string {
	return fmt.Sprintf("RTC<week:%d wd:%d y:%d m:%d d:%d %02d:%02d:%02d>",
		sf.Week, sf.WeekDay, sf.Year, sf.Month, sf.Day, sf.Hour, sf.Minute, sf.Second)
}
