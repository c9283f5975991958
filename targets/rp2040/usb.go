//go:build rp2040

package main

import "machine"

// InitUSB configures USB CDC. On the RP2040 machine.Serial is the USB port.
func InitUSB() {
	_ = machine.Serial.Configure(machine.UARTConfig{})
}

// usbWriter adapts machine.Serial to io.Writer for the console and debug
// output. Writes are dropped while no host has the port open.
type usbWriter struct {
	failures uint32
}

func (w *usbWriter) Write(p []byte) (int, error) {
	n, err := machine.Serial.Write(p)
	if err != nil || n < len(p) {
		w.failures++
	}
	return n, err
}

// readUSB drains whatever the host has sent into buf and returns the bytes
// read.
func readUSB(buf []byte) []byte {
	buf = buf[:0]
	for machine.Serial.Buffered() > 0 && len(buf) < cap(buf) {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			break
		}
		buf = append(buf, b)
	}
	return buf
}
