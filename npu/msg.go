package npu

import "github.com/sarchlab/akita/v4/sim"

// StreamMsg carries one beat of an INT8 stream. Last marks the final beat
// of a packet.
type StreamMsg struct {
	sim.MsgMeta

	Data int8
	Last bool
}

// Meta returns the meta data of the msg.
func (m *StreamMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// Clone creates a copy of the msg with a new ID.
func (m *StreamMsg) Clone() sim.Msg {
	clone := *m
	clone.ID = sim.GetIDGenerator().Generate()

	return &clone
}

// StreamMsgBuilder is a factory for StreamMsg.
type StreamMsgBuilder struct {
	src, dst sim.RemotePort
	data     int8
	last     bool
}

// WithSrc sets the source port of the msg.
func (b StreamMsgBuilder) WithSrc(src sim.RemotePort) StreamMsgBuilder {
	b.src = src
	return b
}

// WithDst sets the destination port of the msg.
func (b StreamMsgBuilder) WithDst(dst sim.RemotePort) StreamMsgBuilder {
	b.dst = dst
	return b
}

// WithData sets the payload of the msg.
func (b StreamMsgBuilder) WithData(data int8) StreamMsgBuilder {
	b.data = data
	return b
}

// WithLast marks the msg as the final beat of a packet.
func (b StreamMsgBuilder) WithLast(last bool) StreamMsgBuilder {
	b.last = last
	return b
}

// Build creates a StreamMsg.
func (b StreamMsgBuilder) Build() *StreamMsg {
	return &StreamMsg{
		MsgMeta: sim.MsgMeta{
			ID:  sim.GetIDGenerator().Generate(),
			Src: b.src,
			Dst: b.dst,
		},
		Data: b.data,
		Last: b.last,
	}
}
