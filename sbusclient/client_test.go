package sbusclient

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/sbus-go/gosbus/sbus"
	"github.com/stretchr/testify/require"
)

// fakeDevice is a loopback UDP listener standing in for an S-Bus PLC: it
// decodes each incoming request and hands it to a per-test handler, which
// crafts and returns the reply bytes (or nil to drop the datagram).
type fakeDevice struct {
	conn *net.UDPConn
}

func newFakeDevice(t *testing.T) *fakeDevice {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	require.NoError(t, err)
	return &fakeDevice{conn: conn}
}

func (f *fakeDevice) port(t *testing.T) int {
	t.Helper()
	_, portStr, err := net.SplitHostPort(f.conn.LocalAddr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return port
}

func (f *fakeDevice) close() { f.conn.Close() }

// serve runs handler against every datagram received until the listener
// is closed.
func (f *fakeDevice) serve(handler func(req sbus.Message, from *net.UDPAddr) []byte) {
	go func() {
		buf := make([]byte, 256)
		for {
			n, from, err := f.conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			req, err := sbus.DecodeMessage(buf[:n])
			if err != nil {
				continue
			}
			reply := handler(req, from)
			if reply != nil {
				_, _ = f.conn.WriteToUDP(reply, from)
			}
		}
	}()
}

func ackReply(seq uint16, ack sbus.Acknowledge) []byte {
	e := sbus.NewEncoder()
	_ = ack.Encode(e)
	msg, _ := sbus.EncodeMessage(sbus.Message{SequenceNumber: seq, TelegramAttribute: sbus.AttributeAcknowledge, Body: e.Finish()})
	return msg
}

func responseReply(seq uint16, body []byte) []byte {
	msg, _ := sbus.EncodeMessage(sbus.Message{SequenceNumber: seq, TelegramAttribute: sbus.AttributeResponse, Body: body})
	return msg
}

func dialFake(t *testing.T, device *fakeDevice) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ServerPort = device.port(t)
	cfg.RequestTimeout = 2 * time.Second
	client, err := Dial(context.Background(), "127.0.0.1", cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestReadFirmwareVersionHappyPath(t *testing.T) {
	device := newFakeDevice(t)
	defer device.close()

	device.serve(func(req sbus.Message, from *net.UDPAddr) []byte {
		e := sbus.NewEncoder()
		_ = (sbus.ReadFirmwareVersionResponse{Version: "S-BUS v1"}).Encode(e)
		return responseReply(req.SequenceNumber, e.Finish())
	})

	client := dialFake(t, device)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	version, err := client.ReadFirmwareVersion(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "S-BUS v1", version)
}

func TestWriteFlagsNakIsNotAnError(t *testing.T) {
	device := newFakeDevice(t)
	defer device.close()

	device.serve(func(req sbus.Message, from *net.UDPAddr) []byte {
		return ackReply(req.SequenceNumber, sbus.AckNak)
	})

	client := dialFake(t, device)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ok, ack, err := client.WriteFlags(ctx, 1, 100, []bool{true, false, true})
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, sbus.AckNak, ack)
}

func TestConcurrentRequestsResolveOutOfOrder(t *testing.T) {
	device := newFakeDevice(t)
	defer device.close()

	device.serve(func(req sbus.Message, from *net.UDPAddr) []byte {
		res := sbus.ReadDisplayRegisterResponse{Register: uint32(req.SequenceNumber) + 1000}
		e := sbus.NewEncoder()
		_ = res.Encode(e)
		reply := responseReply(req.SequenceNumber, e.Finish())

		// Reverse arrival order: delay even sequence numbers so odd ones
		// land first regardless of send order.
		if req.SequenceNumber%2 == 0 {
			go func() {
				time.Sleep(30 * time.Millisecond)
				_, _ = device.conn.WriteToUDP(reply, from)
			}()
			return nil
		}
		return reply
	})

	client := dialFake(t, device)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	type result struct {
		value uint32
		err   error
	}
	results := make(chan result, 4)
	for i := 0; i < 4; i++ {
		go func() {
			v, err := client.ReadDisplayRegister(ctx, 1)
			results <- result{value: v, err: err}
		}()
	}

	for i := 0; i < 4; i++ {
		r := <-results
		require.NoError(t, r.err)
		require.GreaterOrEqual(t, r.value, uint32(1000))
	}
}

func TestReceiverDecodeFailureFansOutToAllAwaiters(t *testing.T) {
	device := newFakeDevice(t)
	defer device.close()

	var calls int
	device.serve(func(req sbus.Message, from *net.UDPAddr) []byte {
		calls++
		if calls == 1 {
			// Give the second concurrent request time to register its
			// pending slot before the fatal reply arrives, so the fan-out
			// below is guaranteed to reach both awaiters.
			time.Sleep(50 * time.Millisecond)
			// A well-formed datagram with a tampered CRC byte: decode
			// fails, which must be fatal for the whole multiplexer.
			good := responseReply(req.SequenceNumber, []byte{0, 0, 0, 0})
			good[len(good)-1] ^= 0xFF
			return good
		}
		return nil // subsequent requests never get a reply
	})

	client := dialFake(t, device)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	type result struct{ err error }
	results := make(chan result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := client.ReadDisplayRegister(ctx, 1)
			results <- result{err: err}
		}()
	}

	for i := 0; i < 2; i++ {
		r := <-results
		require.Error(t, r.err)
		var invalidResp *InvalidResponseError
		require.ErrorAs(t, r.err, &invalidResp)
	}
}

func TestCancellationDoesNotLeakToUnrelatedAwaiter(t *testing.T) {
	device := newFakeDevice(t)
	defer device.close()

	device.serve(func(req sbus.Message, from *net.UDPAddr) []byte {
		if req.SequenceNumber%2 == 1 {
			return nil // never reply to the request we're about to cancel
		}
		e := sbus.NewEncoder()
		_ = (sbus.ReadDisplayRegisterResponse{Register: 42}).Encode(e)
		return responseReply(req.SequenceNumber, e.Finish())
	})

	client := dialFake(t, device)

	cancelCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.ReadDisplayRegister(cancelCtx, 1)
	require.Error(t, err)

	ctx, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	v, err := client.ReadDisplayRegister(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, uint32(42), v)
}
