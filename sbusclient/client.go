// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package sbusclient implements the S-Bus UDP transport: a single
// pre-connected socket shared by many concurrent logical requests,
// correlated by sequence number, on top of the wire codec in package
// sbus.
package sbusclient

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/sbus-go/gosbus/sbus"
	"github.com/sbus-go/gosbus/sbuslog"
)

type replyResult struct {
	msg sbus.Message
	err error
}

// Client is a connected S-Bus UDP endpoint. A background goroutine reads
// replies off the socket and dispatches them to whichever typed call is
// waiting on the matching sequence number. The zero value is not usable;
// construct with Dial.
type Client struct {
	conn *net.UDPConn
	cfg  Config

	sequence uint32 // truncated to uint16 on use; wraparound is legal

	mu      sync.Mutex
	pending map[uint16]chan replyResult

	metrics *ClientMetrics
	Log     sbuslog.Log

	cancel context.CancelFunc
	done   chan struct{}

	recvMu  sync.Mutex
	recvErr error
}

// Dial resolves addr (host, without port) against cfg.ServerPort, opens a
// pre-connected UDP socket, and starts the background receiver. Call Close
// to stop the receiver and release the socket. Canceling ctx stops the
// receiver only once its current socket read returns, and does not close
// the socket.
func Dial(ctx context.Context, addr string, cfg Config) (*Client, error) {
	if err := cfg.Valid(); err != nil {
		return nil, err
	}

	raddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(addr, strconv.Itoa(cfg.ServerPort)))
	if err != nil {
		return nil, wrapIOError(err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, wrapIOError(err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := &Client{
		conn:    conn,
		cfg:     cfg,
		pending: make(map[uint16]chan replyResult),
		metrics: NewClientMetrics("sbusclient"),
		Log:     sbuslog.New("sbusclient"),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go c.receive(runCtx)

	return c, nil
}

// Metrics returns the prometheus.Collector tracking this Client's request
// activity; register it with a prometheus.Registry to export it.
func (c *Client) Metrics() *ClientMetrics { return c.metrics }

// Done is closed once the background receiver has exited, whether because
// Close was called or because it hit an unrecoverable decode/socket
// failure. Err reports which.
func (c *Client) Done() <-chan struct{} { return c.done }

// Err reports the background receiver's terminal error. It is only
// meaningful after Done is closed; it returns nil if the receiver is
// still running or stopped because of a clean Close.
func (c *Client) Err() error {
	c.recvMu.Lock()
	defer c.recvMu.Unlock()
	return c.recvErr
}

func (c *Client) setRecvErr(err error) {
	c.recvMu.Lock()
	c.recvErr = err
	c.recvMu.Unlock()
}

// Close stops the background receiver and closes the socket. Any
// still-pending calls observe ctx cancellation rather than a reply.
func (c *Client) Close() error {
	c.cancel()
	err := c.conn.Close() // unblocks the receiver's pending Read
	<-c.done
	return err
}

// receive is the background loop described in §4.6: decode one datagram
// per iteration, and either fulfill the matching pending slot or, on a
// decode failure, fan the error out to every slot currently pending and
// terminate (the peer is presumed desynchronized from this point on).
func (c *Client) receive(ctx context.Context) {
	defer close(c.done)

	buf := make([]byte, c.cfg.ReadBufferSize)
	for {
		if ctx.Err() != nil {
			return
		}

		n, err := c.conn.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			ioErr := wrapIOError(err)
			c.failAll(ioErr)
			c.metrics.recordReceiverFatal()
			c.setRecvErr(ioErr)
			c.Log.Error("sbusclient: receive failed, aborting: %v", err)
			return
		}

		msg, err := sbus.DecodeMessage(buf[:n])
		if err != nil {
			decErr := wrapDecodeError(err)
			c.failAll(decErr)
			c.metrics.recordReceiverFatal()
			c.setRecvErr(decErr)
			c.Log.Error("sbusclient: decode failed, aborting: %v", err)
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[msg.SequenceNumber]
		if ok {
			delete(c.pending, msg.SequenceNumber)
		}
		c.mu.Unlock()

		if !ok {
			c.Log.Warn("sbusclient: unexpected response for sequence %d", msg.SequenceNumber)
			continue
		}
		ch <- replyResult{msg: msg}
	}
}

// failAll delivers err to every currently pending slot and removes it from
// the map, under the lock held across the send; channels are buffered
// (capacity 1) so this never blocks even if the caller already stopped
// awaiting.
func (c *Client) failAll(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for seq, ch := range c.pending {
		ch <- replyResult{err: err}
		delete(c.pending, seq)
	}
}

// sendRequest implements the outgoing path of §4.6: encode, register the
// reply slot before sending, transmit, then race the reply against ctx.
// On success, telegram_attribute must equal expect or the reply is
// rejected as InvalidResponse.
func (c *Client) sendRequest(ctx context.Context, station uint8, cmd sbus.CommandId, body []byte, expect sbus.TelegramAttribute) ([]byte, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	seq := uint16(atomic.AddUint32(&c.sequence, 1))

	req := sbus.Request{Station: station, CommandId: cmd, Body: body}
	reqEnc := sbus.NewEncoder()
	if err := req.Encode(reqEnc); err != nil {
		return nil, wrapEncodeError(err)
	}

	msgBytes, err := sbus.EncodeMessage(sbus.Message{
		SequenceNumber:    seq,
		TelegramAttribute: sbus.AttributeRequest,
		Body:              reqEnc.Finish(),
	})
	if err != nil {
		return nil, wrapEncodeError(err)
	}

	ch := make(chan replyResult, 1)
	c.mu.Lock()
	c.pending[seq] = ch
	c.mu.Unlock()

	c.metrics.recordSent()
	if _, err := c.conn.Write(msgBytes); err != nil {
		c.mu.Lock()
		delete(c.pending, seq)
		c.mu.Unlock()
		c.metrics.recordIOError()
		return nil, wrapIOError(err)
	}

	select {
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, seq)
		c.mu.Unlock()
		c.metrics.recordTimeout()
		return nil, wrapIOError(ctx.Err())
	case res := <-ch:
		if res.err != nil {
			var ioErr *IOError
			if errors.As(res.err, &ioErr) {
				c.metrics.recordIOError()
			} else {
				c.metrics.recordInvalidReply()
			}
			return nil, res.err
		}
		if res.msg.TelegramAttribute != expect {
			c.metrics.recordInvalidReply()
			return nil, &InvalidResponseError{Message: "Telegram attribute mismatch"}
		}
		if expect == sbus.AttributeAcknowledge {
			ack, decErr := sbus.DecodeAcknowledge(sbus.NewDecoder(res.msg.Body))
			if decErr != nil {
				c.metrics.recordInvalidReply()
				return nil, wrapDecodeError(decErr)
			}
			if ack.IsAck() {
				c.metrics.recordOk()
			} else {
				c.metrics.recordNak()
			}
		} else {
			c.metrics.recordOk()
		}
		return res.msg.Body, nil
	}
}

func validate(address uint16, length int, max int) error {
	if err := sbus.ValidateArguments(address, length, max); err != nil {
		return &ArgumentsOutOfRangeError{Message: err.Error()}
	}
	return nil
}

// ReadFirmwareVersion returns the device's firmware version string.
func (c *Client) ReadFirmwareVersion(ctx context.Context, station uint8) (string, error) {
	body, err := c.sendRequest(ctx, station, sbus.CommandReadFirmwareVersion, nil, sbus.AttributeResponse)
	if err != nil {
		return "", err
	}
	res, err := sbus.DecodeReadFirmwareVersionResponse(sbus.NewDecoder(body))
	if err != nil {
		return "", wrapDecodeError(err)
	}
	return res.Version, nil
}

// ReadSBusStationNumber queries the station number of an unknown device,
// using the broadcast station address.
func (c *Client) ReadSBusStationNumber(ctx context.Context) (uint8, error) {
	body, err := c.sendRequest(ctx, BroadcastStation, sbus.CommandReadSBusStationNumber, nil, sbus.AttributeResponse)
	if err != nil {
		return 0, err
	}
	res, err := sbus.DecodeReadSBusStationNumberResponse(sbus.NewDecoder(body))
	if err != nil {
		return 0, wrapDecodeError(err)
	}
	return res.Station, nil
}

// ReadRealTimeClock returns the device's real-time clock.
func (c *Client) ReadRealTimeClock(ctx context.Context, station uint8) (sbus.RealTimeClock, error) {
	body, err := c.sendRequest(ctx, station, sbus.CommandReadRealTimeClock, nil, sbus.AttributeResponse)
	if err != nil {
		return sbus.RealTimeClock{}, err
	}
	res, err := sbus.DecodeReadRealTimeClockResponse(sbus.NewDecoder(body))
	if err != nil {
		return sbus.RealTimeClock{}, wrapDecodeError(err)
	}
	return res.RTC, nil
}

// WriteRealTimeClock installs rtc on the device. The bool result reports
// whether the device acknowledged (rather than NAKed) the write; the
// sbus.Acknowledge result additionally preserves the NAK subtype (wrong
// password, reduced protocol, already in use) when it did not.
func (c *Client) WriteRealTimeClock(ctx context.Context, station uint8, rtc sbus.RealTimeClock) (bool, sbus.Acknowledge, error) {
	e := sbus.NewEncoder()
	if err := (sbus.WriteRealTimeClockRequest{RTC: rtc}).Encode(e); err != nil {
		return false, 0, wrapEncodeError(err)
	}
	return c.ackWithNakCheck(ctx, station, sbus.CommandWriteRealTimeClock, e.Finish())
}

// ReadDisplayRegister returns the device's single display register.
func (c *Client) ReadDisplayRegister(ctx context.Context, station uint8) (uint32, error) {
	body, err := c.sendRequest(ctx, station, sbus.CommandReadDisplayRegister, nil, sbus.AttributeResponse)
	if err != nil {
		return 0, err
	}
	res, err := sbus.DecodeReadDisplayRegisterResponse(sbus.NewDecoder(body))
	if err != nil {
		return 0, wrapDecodeError(err)
	}
	return res.Register, nil
}

func (c *Client) readIntArray(ctx context.Context, station uint8, cmd sbus.CommandId, address uint16, length uint8, max int) ([]int32, error) {
	if err := validate(address, int(length), max); err != nil {
		return nil, err
	}
	e := sbus.NewEncoder()
	if err := (sbus.ReadArrayRequest{Address: address, Length: length}).Encode(e); err != nil {
		return nil, wrapEncodeError(err)
	}
	body, err := c.sendRequest(ctx, station, cmd, e.Finish(), sbus.AttributeResponse)
	if err != nil {
		return nil, err
	}
	values, err := sbus.DecodeIntArrayResponse(sbus.NewDecoder(body))
	if err != nil {
		return nil, wrapDecodeError(err)
	}
	return values, nil
}

func (c *Client) readBoolArray(ctx context.Context, station uint8, cmd sbus.CommandId, address uint16, length uint8, max int) ([]bool, error) {
	if err := validate(address, int(length), max); err != nil {
		return nil, err
	}
	e := sbus.NewEncoder()
	if err := (sbus.ReadArrayRequest{Address: address, Length: length}).Encode(e); err != nil {
		return nil, wrapEncodeError(err)
	}
	body, err := c.sendRequest(ctx, station, cmd, e.Finish(), sbus.AttributeResponse)
	if err != nil {
		return nil, err
	}
	values, err := sbus.DecodeBoolArrayResponse(sbus.NewDecoder(body))
	if err != nil {
		return nil, wrapDecodeError(err)
	}
	if len(values) > int(length) {
		values = values[:length] // drop the padding bits of the last byte
	}
	return values, nil
}

// ReadCounters reads length counters starting at address.
func (c *Client) ReadCounters(ctx context.Context, station uint8, address uint16, length uint8) ([]int32, error) {
	return c.readIntArray(ctx, station, sbus.CommandReadCounters, address, length, sbus.MaxCountersLength)
}

// ReadRegisters reads length registers starting at address.
func (c *Client) ReadRegisters(ctx context.Context, station uint8, address uint16, length uint8) ([]int32, error) {
	return c.readIntArray(ctx, station, sbus.CommandReadRegisters, address, length, sbus.MaxRegistersLength)
}

// ReadTimers reads length timers starting at address.
func (c *Client) ReadTimers(ctx context.Context, station uint8, address uint16, length uint8) ([]int32, error) {
	return c.readIntArray(ctx, station, sbus.CommandReadTimers, address, length, sbus.MaxTimersLength)
}

// ReadFlags reads length flags starting at address.
func (c *Client) ReadFlags(ctx context.Context, station uint8, address uint16, length uint8) ([]bool, error) {
	return c.readBoolArray(ctx, station, sbus.CommandReadFlags, address, length, sbus.MaxFlagsLength)
}

// ReadInputs reads length inputs starting at address.
func (c *Client) ReadInputs(ctx context.Context, station uint8, address uint16, length uint8) ([]bool, error) {
	return c.readBoolArray(ctx, station, sbus.CommandReadInputs, address, length, sbus.MaxInputsLength)
}

// ReadOutputs reads length outputs starting at address.
func (c *Client) ReadOutputs(ctx context.Context, station uint8, address uint16, length uint8) ([]bool, error) {
	return c.readBoolArray(ctx, station, sbus.CommandReadOutputs, address, length, sbus.MaxOutputsLength)
}

func (c *Client) writeIntArray(ctx context.Context, station uint8, cmd sbus.CommandId, address uint16, values []int32, max int) (bool, sbus.Acknowledge, error) {
	if err := validate(address, len(values), max); err != nil {
		return false, 0, err
	}
	e := sbus.NewEncoder()
	if err := (sbus.WriteIntArrayRequest{Address: address, Values: values}).Encode(e); err != nil {
		return false, 0, wrapEncodeError(err)
	}
	return c.ackWithNakCheck(ctx, station, cmd, e.Finish())
}

func (c *Client) writeBoolArray(ctx context.Context, station uint8, cmd sbus.CommandId, address uint16, values []bool, max int) (bool, sbus.Acknowledge, error) {
	if err := validate(address, len(values), max); err != nil {
		return false, 0, err
	}
	e := sbus.NewEncoder()
	if err := (sbus.WriteBoolArrayRequest{Address: address, Values: values}).Encode(e); err != nil {
		return false, 0, wrapEncodeError(err)
	}
	return c.ackWithNakCheck(ctx, station, cmd, e.Finish())
}

// ackWithNakCheck sends body expecting an Acknowledge reply and reports
// whether the device acknowledged (as opposed to NAKed) the write, along
// with the raw sbus.Acknowledge so a NAK subtype (wrong password, reduced
// protocol, already in use) is not lost. A NAK is not an error (§7): it
// is a successful call returning (false, AckNak*, nil).
func (c *Client) ackWithNakCheck(ctx context.Context, station uint8, cmd sbus.CommandId, body []byte) (bool, sbus.Acknowledge, error) {
	resBody, err := c.sendRequest(ctx, station, cmd, body, sbus.AttributeAcknowledge)
	if err != nil {
		return false, 0, err
	}
	ack, err := sbus.DecodeAcknowledge(sbus.NewDecoder(resBody))
	if err != nil {
		return false, 0, wrapDecodeError(err)
	}
	return ack.IsAck(), ack, nil
}

// WriteCounters writes values starting at address.
func (c *Client) WriteCounters(ctx context.Context, station uint8, address uint16, values []int32) (bool, sbus.Acknowledge, error) {
	return c.writeIntArray(ctx, station, sbus.CommandWriteCounters, address, values, sbus.MaxCountersLength)
}

// WriteRegisters writes values starting at address.
func (c *Client) WriteRegisters(ctx context.Context, station uint8, address uint16, values []int32) (bool, sbus.Acknowledge, error) {
	return c.writeIntArray(ctx, station, sbus.CommandWriteRegisters, address, values, sbus.MaxRegistersLength)
}

// WriteTimers writes values starting at address.
func (c *Client) WriteTimers(ctx context.Context, station uint8, address uint16, values []int32) (bool, sbus.Acknowledge, error) {
	return c.writeIntArray(ctx, station, sbus.CommandWriteTimers, address, values, sbus.MaxTimersLength)
}

// WriteFlags writes values starting at address.
func (c *Client) WriteFlags(ctx context.Context, station uint8, address uint16, values []bool) (bool, sbus.Acknowledge, error) {
	return c.writeBoolArray(ctx, station, sbus.CommandWriteFlags, address, values, sbus.MaxFlagsLength)
}

// WriteOutputs writes values starting at address.
func (c *Client) WriteOutputs(ctx context.Context, station uint8, address uint16, values []bool) (bool, sbus.Acknowledge, error) {
	return c.writeBoolArray(ctx, station, sbus.CommandWriteOutputs, address, values, sbus.MaxOutputsLength)
}
