package discordpod

// Context carries everything an agent invocation can reach besides the
// conversation itself: the caller-supplied shared data and a borrowed
// reference to the active reply thread, so tools and instructions can message
// the thread out of band. A fresh Context is built per invocation; the
// Thread belongs to the gateway client for the duration of the call.
type Context[D any] struct {
	// Data is the shared application value, as of UpdateData at invocation time.
	Data D

	// Thread is the reply thread the response will be posted into.
	Thread *Thread

	// Trigger is the incoming message that started this invocation.
	Trigger *Message
}
