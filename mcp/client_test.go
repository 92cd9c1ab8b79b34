package mcp

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// scriptedServer replies with the next entry of responses for each request
// it reads, in order, looping if exhausted.
func scriptedServer(t *testing.T, responses [][]byte) (ip string, port int, stop func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan struct{})
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 256)
		i := 0
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
			resp := responses[i%len(responses)]
			i++
			if _, err := conn.Write(resp); err != nil {
				return
			}
		}
	}()
	go func() {
		<-done
		ln.Close()
	}()
	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	p, _ := strconv.Atoi(portStr)
	return host, p, func() { close(done) }
}

func newTestClient(ip string, port int) *Client {
	return New(WithIP(ip), WithPort(port), WithFormat(FormatBinary), WithTimeout(500*time.Millisecond))
}

func TestClientReadOne(t *testing.T) {
	response := mustHex(t, "D0 00 00 FF FF 03 00 06 00 00 00 01 00 02 00")
	ip, port, stop := scriptedServer(t, [][]byte{response})
	defer stop()

	c := newTestClient(ip, port)
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Disconnect()

	item, err := c.ReadOne(ReadItem{Device: DeviceD, Address: 100, NumPoints: 2})
	if err != nil {
		t.Fatalf("ReadOne: %v", err)
	}
	got := item.Int16Array()
	want := []int16{1, 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Int16Array mismatch (-want +got):\n%s", diff)
	}
}

func TestClientWriteOne(t *testing.T) {
	response := mustHex(t, "D0 00 00 FF FF 03 00 02 00 00 00")
	ip, port, stop := scriptedServer(t, [][]byte{response})
	defer stop()

	c := newTestClient(ip, port)
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Disconnect()

	err := c.WriteOne(WriteItem{Device: DeviceD, Address: 200, Value: Int32Value(0x01020304)})
	if err != nil {
		t.Fatalf("WriteOne: %v", err)
	}
}

func TestClientReadManyPreservesInputOrder(t *testing.T) {
	// payload: word slot (D0) = 0x0005, dword slot (D10) = 0x00000006
	response := mustHex(t, "D0 00 00 FF FF 03 00 08 00 00 00 05 00 06 00 00 00")
	ip, port, stop := scriptedServer(t, [][]byte{response})
	defer stop()

	c := newTestClient(ip, port)
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Disconnect()

	items := []ReadItem{
		{Device: DeviceD, Address: 0, NumPoints: 1},
		{Device: DeviceD, Address: 10, NumPoints: 2},
	}
	got, err := c.ReadMany(items)
	if err != nil {
		t.Fatalf("ReadMany: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if diff := cmp.Diff([]int16{5}, got[0].Int16Array()); diff != "" {
		t.Errorf("first result mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int32{6}, got[1].Int32Array()); diff != "" {
		t.Errorf("second result mismatch (-want +got):\n%s", diff)
	}
}

func TestClientHealthCheck(t *testing.T) {
	response := append(append([]byte{0xD0, 0x00, 0x00, 0xFF, 0xFF, 0x03, 0x00}, le16(uint16(len(healthCheckPayload)+2))...), append(le16(0), []byte(healthCheckPayload)...)...)
	ip, port, stop := scriptedServer(t, [][]byte{response})
	defer stop()

	c := newTestClient(ip, port)
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestClientReadNotOpen(t *testing.T) {
	c := New(WithIP("127.0.0.1"), WithPort(1))
	_, err := c.ReadOne(ReadItem{Device: DeviceD, Address: 0, NumPoints: 1})
	if err != ErrNotOpen {
		t.Errorf("ReadOne on unconnected client = %v, want ErrNotOpen", err)
	}
}

func TestClientInvalidIP(t *testing.T) {
	c := New(WithIP("not-an-ip"))
	if err := c.Connect(); err == nil {
		t.Errorf("Connect with invalid IP should fail")
	} else if _, ok := err.(*InvalidIPError); !ok {
		t.Errorf("expected *InvalidIPError, got %T", err)
	}
}

func TestClientWrongMessageFormat(t *testing.T) {
	c := New()
	readItem := ReadRequest(DeviceD, 0, 1)
	if err := c.Write(readItem); err != ErrWrongMessageFormat {
		t.Errorf("Write(readItem) = %v, want ErrWrongMessageFormat", err)
	}
	writeItem := WriteRequest(DeviceD, 0, Int16Value(1))
	if _, err := c.Read(writeItem); err != ErrWrongMessageFormat {
		t.Errorf("Read(writeItem) = %v, want ErrWrongMessageFormat", err)
	}
}
