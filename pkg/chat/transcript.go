package chat

// Transcript is the ordered, append-only history of messages shown to the
// user. Insertion order is display order. It is not safe for concurrent
// use; the conversation controller owns it and serializes access.
type Transcript struct {
	msgs []Message
}

// Append adds a message to the end of the transcript.
func (t *Transcript) Append(m Message) {
	t.msgs = append(t.msgs, m)
}

// Messages returns a copy of the transcript in append order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// Len returns the number of messages in the transcript.
func (t *Transcript) Len() int {
	return len(t.msgs)
}

// Last returns the most recent message, or nil for an empty transcript.
func (t *Transcript) Last() *Message {
	if len(t.msgs) == 0 {
		return nil
	}
	m := t.msgs[len(t.msgs)-1]
	return &m
}
