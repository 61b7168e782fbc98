package domain

// Payload is the read-only snapshot of a message handed to a Transport.
type Payload struct {
	Text        string
	Channel     string
	Username    string
	Icon        Icon
	Attachments []Attachment
}
