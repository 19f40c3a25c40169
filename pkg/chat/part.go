// Package chat defines the conversation data model shared across the
// application: roles, message parts, and the append-only transcript.
package chat

// Part is a single typed fragment composing one Message. The unexported
// marker method keeps the set of part kinds closed.
type Part interface{ isPart() }

// TextPart is a plain text fragment.
type TextPart struct {
	Text string
}

func (TextPart) isPart() {}

// ImagePart is an inline image fragment. Data carries the raw image bytes
// for the outbound request payload; Preview is the local path of the file
// the user selected, kept so the UI can reference the image for the
// lifetime of the message.
type ImagePart struct {
	MIMEType string
	Data     []byte
	Preview  string
}

func (ImagePart) isPart() {}
