package relay

// Event is an inbound chat platform event, already stripped down to what
// the router classifies on. It is a closed union: the router's type switch
// over the two variants is exhaustive.
type Event interface {
	isEvent()
}

// Peer is the sender of a message or the subject of a session start.
type Peer struct {
	ID    int64
	Name  string
	IsBot bool
}

// MessageCreated is a new message, either a private message to the bot
// (Direct) or a message in a group chat identified by ChatID.
type MessageCreated struct {
	Sender    Peer
	ChatID    int64
	Direct    bool
	MessageID string
	Text      string
	// ReplyTo carries the id of the message this one replies to,
	// empty when the message is not a reply.
	ReplyTo string
}

// SessionStarted fires when a user opens a dialog with the bot for the
// first time (or after deleting it). Equivalent to receiving /start.
type SessionStarted struct {
	User Peer
}

func (MessageCreated) isEvent() {}
func (SessionStarted) isEvent() {}
