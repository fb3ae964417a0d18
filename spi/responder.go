package spi

// A ScriptedResponder sends a fixed sequence of bytes and then a filler.
type ScriptedResponder struct {
	Script []byte
	Filler byte

	next     int
	received []byte
}

// NewScriptedResponder creates a responder that sends the script and then
// 0xFF.
func NewScriptedResponder(script ...byte) *ScriptedResponder {
	return &ScriptedResponder{Script: script, Filler: 0xFF}
}

// Next returns the next scripted byte.
func (r *ScriptedResponder) Next() byte {
	if r.next >= len(r.Script) {
		return r.Filler
	}

	b := r.Script[r.next]
	r.next++

	return b
}

// Received records the byte.
func (r *ScriptedResponder) Received(b byte) {
	r.received = append(r.received, b)
}

// Bytes returns the bytes received so far.
func (r *ScriptedResponder) Bytes() []byte {
	return r.received
}

// An EchoResponder replies with the byte it received in the previous
// exchange.
type EchoResponder struct {
	last byte
}

// Next returns the last received byte.
func (r *EchoResponder) Next() byte {
	return r.last
}

// Received remembers the byte.
func (r *EchoResponder) Received(b byte) {
	r.last = b
}

// A RecordingResponder passes through to another responder and keeps the
// bytes in both directions.
type RecordingResponder struct {
	Inner Responder

	sent     []byte
	received []byte
}

// Next asks the inner responder and records the byte.
func (r *RecordingResponder) Next() byte {
	var b byte
	if r.Inner != nil {
		b = r.Inner.Next()
	}

	r.sent = append(r.sent, b)

	return b
}

// Received records the byte and passes it on.
func (r *RecordingResponder) Received(b byte) {
	r.received = append(r.received, b)

	if r.Inner != nil {
		r.Inner.Received(b)
	}
}

// Sent returns the bytes handed to the engine so far.
func (r *RecordingResponder) Sent() []byte {
	return r.sent
}

// ReceivedBytes returns the bytes received from the engine so far.
func (r *RecordingResponder) ReceivedBytes() []byte {
	return r.received
}
