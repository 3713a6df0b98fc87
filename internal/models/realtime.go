package models

// Client-to-server event names.
const (
	EventJoin          = "join"
	EventText          = "text"
	EventTyping        = "typing"
	EventStopTyping    = "stop_typing"
	EventRequestReveal = "request_reveal"
	EventImage         = "image"
	EventAudio         = "audio"
)

// Server-to-client event names.
const (
	EventMatchFound      = "match_found"
	EventStatus          = "status"
	EventMessage         = "message"
	EventRevealRequested = "reveal_requested"
	EventRevealProfiles  = "reveal_profiles"
	EventMediaError      = "media_error"
)

// ClientEvent is the JSON frame a connected session sends over the
// websocket. SenderID is stamped by the read pump from the authenticated
// connection and never trusted from the wire.
type ClientEvent struct {
	Event      string `json:"event"`
	Room       string `json:"room,omitempty"`
	ReceiverID string `json:"receiver_id,omitempty"`
	Msg        string `json:"msg,omitempty"`
	ImageData  string `json:"image_data,omitempty"`
	AudioData  string `json:"audio_data,omitempty"`

	SenderID string `json:"-"`
}

// ServerEvent is the JSON frame delivered to connected sessions.
type ServerEvent struct {
	Event         string `json:"event"`
	Room          string `json:"room,omitempty"`
	Msg           string `json:"msg,omitempty"`
	User          string `json:"user,omitempty"`
	SenderID      string `json:"sender_id,omitempty"`
	PartnerID     string `json:"partner_id,omitempty"`
	Type          string `json:"type,omitempty"`
	RequesterName string `json:"requester_name,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// Envelope routes a ServerEvent through the hub: either to every session in
// Room (optionally excluding the sender's sessions) or to the sessions on a
// single user channel. Envelopes travel through Redis pub/sub, so all fields
// are serializable.
type Envelope struct {
	Room    string      `json:"room,omitempty"`
	UserID  string      `json:"user_id,omitempty"`
	Exclude string      `json:"exclude,omitempty"`
	Event   ServerEvent `json:"event"`
}
