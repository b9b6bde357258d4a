package npu

import (
	"fmt"
	"sync"

	"github.com/sarchlab/akita/v4/sim"
)

// HookPosPortMsgSend marks when a message is pushed into a port's outgoing
// buffer.
var HookPosPortMsgSend = &sim.HookPos{Name: "Port Msg Send"}

// HookPosPortMsgRecvd marks when an inbound message arrives at a port.
var HookPosPortMsgRecvd = &sim.HookPos{Name: "Port Msg Recv"}

// HookPosPortMsgRetrieve marks when a buffered message leaves a port.
var HookPosPortMsgRetrieve = &sim.HookPos{Name: "Port Msg Retrieve"}

// A Port is owned by a component and is used to plug in connections.
type Port interface {
	sim.Named
	sim.Hookable

	AsRemote() sim.RemotePort

	SetConnection(conn sim.Connection)
	Component() sim.Component

	// For connection
	Deliver(msg sim.Msg) *sim.SendError
	NotifyAvailable()
	RetrieveOutgoing() sim.Msg
	PeekOutgoing() sim.Msg

	// For component
	CanSend() bool
	Send(msg sim.Msg) *sim.SendError
	RetrieveIncoming() sim.Msg
	PeekIncoming() sim.Msg
}

// streamPort buffers stream beats in each direction. A full outgoing buffer
// makes CanSend return false, which is how the ready side of the ready/valid
// handshake is realized.
type streamPort struct {
	sim.HookableBase

	lock sync.Mutex
	name string
	comp sim.Component
	conn sim.Connection

	incomingBuf sim.Buffer
	outgoingBuf sim.Buffer
}

// NewStreamPort creates a port with the given buffer capacities.
func NewStreamPort(
	comp sim.Component,
	incomingBufCap, outgoingBufCap int,
	name string,
) Port {
	p := new(streamPort)
	p.comp = comp
	p.incomingBuf = sim.NewBuffer(name+".IncomingBuf", incomingBufCap)
	p.outgoingBuf = sim.NewBuffer(name+".OutgoingBuf", outgoingBufCap)
	p.name = name

	return p
}

// AsRemote returns the remote port name.
func (p *streamPort) AsRemote() sim.RemotePort {
	return sim.RemotePort(p.name)
}

// SetConnection sets which connection is plugged in to this port.
func (p *streamPort) SetConnection(conn sim.Connection) {
	if p.conn != nil {
		panic(fmt.Sprintf("connection already set to %s, now connecting to %s",
			p.conn.Name(), conn.Name()))
	}

	p.conn = conn
}

// Component returns the owner component of the port.
func (p *streamPort) Component() sim.Component {
	return p.comp
}

// Name returns the name of the port.
func (p *streamPort) Name() string {
	return p.name
}

// CanSend checks if the port can accept another outgoing message.
func (p *streamPort) CanSend() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.outgoingBuf.CanPush()
}

// Send is used by the owner component to send a message out.
func (p *streamPort) Send(msg sim.Msg) *sim.SendError {
	p.lock.Lock()

	p.msgMustBeValid(msg)

	if !p.outgoingBuf.CanPush() {
		p.lock.Unlock()
		return sim.NewSendError()
	}

	wasEmpty := p.outgoingBuf.Size() == 0
	p.outgoingBuf.Push(msg)

	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    HookPosPortMsgSend,
		Item:   msg,
	})
	p.lock.Unlock()

	if wasEmpty {
		p.conn.NotifySend()
	}

	return nil
}

// Deliver is used by the connection to hand a message to the component.
func (p *streamPort) Deliver(msg sim.Msg) *sim.SendError {
	p.lock.Lock()

	if !p.incomingBuf.CanPush() {
		p.lock.Unlock()
		return sim.NewSendError()
	}

	wasEmpty := p.incomingBuf.Size() == 0

	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    HookPosPortMsgRecvd,
		Item:   msg,
	})

	p.incomingBuf.Push(msg)
	p.lock.Unlock()

	if p.comp != nil && wasEmpty {
		p.comp.NotifyRecv(p)
	}

	return nil
}

// RetrieveIncoming takes a message from the incoming buffer.
func (p *streamPort) RetrieveIncoming() sim.Msg {
	p.lock.Lock()
	defer p.lock.Unlock()

	item := p.incomingBuf.Pop()
	if item == nil {
		return nil
	}

	msg := item.(sim.Msg)
	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    HookPosPortMsgRetrieve,
		Item:   msg,
	})

	if p.incomingBuf.Size() == p.incomingBuf.Capacity()-1 {
		p.conn.NotifyAvailable(p)
	}

	return msg
}

// RetrieveOutgoing takes a message from the outgoing buffer.
func (p *streamPort) RetrieveOutgoing() sim.Msg {
	p.lock.Lock()
	defer p.lock.Unlock()

	item := p.outgoingBuf.Pop()
	if item == nil {
		return nil
	}

	msg := item.(sim.Msg)
	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    HookPosPortMsgRetrieve,
		Item:   msg,
	})

	if p.outgoingBuf.Size() == p.outgoingBuf.Capacity()-1 {
		p.comp.NotifyPortFree(p)
	}

	return msg
}

// PeekIncoming returns the head of the incoming buffer without removing it.
func (p *streamPort) PeekIncoming() sim.Msg {
	p.lock.Lock()
	defer p.lock.Unlock()

	item := p.incomingBuf.Peek()
	if item == nil {
		return nil
	}

	return item.(sim.Msg)
}

// PeekOutgoing returns the head of the outgoing buffer without removing it.
func (p *streamPort) PeekOutgoing() sim.Msg {
	p.lock.Lock()
	defer p.lock.Unlock()

	item := p.outgoingBuf.Peek()
	if item == nil {
		return nil
	}

	return item.(sim.Msg)
}

// NotifyAvailable is called by the connection when it can accept messages
// again.
func (p *streamPort) NotifyAvailable() {
	if p.comp != nil {
		p.comp.NotifyPortFree(p)
	}
}

func (p *streamPort) msgMustBeValid(msg sim.Msg) {
	if p.Name() != string(msg.Meta().Src) {
		panic("sending port is not msg src")
	}

	if msg.Meta().Dst == "" {
		panic("dst is not given")
	}

	if msg.Meta().Src == msg.Meta().Dst {
		panic("sending back to src")
	}
}
