package core

// UpdateKind names the populated variant of an Update.
type UpdateKind string

const (
	UpdateMessage           UpdateKind = "message"
	UpdateEditedMessage     UpdateKind = "edited_message"
	UpdateChannelPost       UpdateKind = "channel_post"
	UpdateEditedChannelPost UpdateKind = "edited_channel_post"
	UpdateInlineQuery       UpdateKind = "inline_query"
	UpdateCallbackQuery     UpdateKind = "callback_query"
)

// Kind is a handler key for the event map: a message payload kind or one of
// the two query meta-kinds.
type Kind string

const (
	KindText          Kind = "text"
	KindAnimation     Kind = "animation"
	KindAudio         Kind = "audio"
	KindDocument      Kind = "document"
	KindPhoto         Kind = "photo"
	KindSticker       Kind = "sticker"
	KindVideo         Kind = "video"
	KindVideoNote     Kind = "video_note"
	KindVoice         Kind = "voice"
	KindLocation      Kind = "location"
	KindInlineQuery   Kind = "inline_query"
	KindCallbackQuery Kind = "callback_query"
)

// MessageKinds is the canonical detection order for message payloads.
var MessageKinds = []Kind{
	KindText,
	KindAnimation,
	KindAudio,
	KindDocument,
	KindPhoto,
	KindSticker,
	KindVideo,
	KindVideoNote,
	KindVoice,
	KindLocation,
}

// IsKnownKind reports whether key names an event-map kind rather than a
// command pattern.
func IsKnownKind(key string) bool {
	switch Kind(key) {
	case KindInlineQuery, KindCallbackQuery:
		return true
	}
	for _, k := range MessageKinds {
		if string(k) == key {
			return true
		}
	}
	return false
}

// Update is one inbound event. At most one variant is expected to be set.
type Update struct {
	UpdateID          int64          `json:"update_id"`
	Message           *Message       `json:"message,omitempty"`
	EditedMessage     *Message       `json:"edited_message,omitempty"`
	ChannelPost       *Message       `json:"channel_post,omitempty"`
	EditedChannelPost *Message       `json:"edited_channel_post,omitempty"`
	InlineQuery       *InlineQuery   `json:"inline_query,omitempty"`
	CallbackQuery     *CallbackQuery `json:"callback_query,omitempty"`
}

// Kind returns the first populated variant in classification order, or false
// when nothing known is set.
func (u *Update) Kind() (UpdateKind, bool) {
	switch {
	case u == nil:
		return "", false
	case u.Message != nil:
		return UpdateMessage, true
	case u.EditedMessage != nil:
		return UpdateEditedMessage, true
	case u.ChannelPost != nil:
		return UpdateChannelPost, true
	case u.EditedChannelPost != nil:
		return UpdateEditedChannelPost, true
	case u.InlineQuery != nil:
		return UpdateInlineQuery, true
	case u.CallbackQuery != nil:
		return UpdateCallbackQuery, true
	}
	return "", false
}

// message returns the message carried by a message-family update.
func (u *Update) message(kind UpdateKind) *Message {
	switch kind {
	case UpdateMessage:
		return u.Message
	case UpdateEditedMessage:
		return u.EditedMessage
	case UpdateChannelPost:
		return u.ChannelPost
	case UpdateEditedChannelPost:
		return u.EditedChannelPost
	}
	return nil
}

// Payload is what a Handler receives: *Message, *InlineQuery or *CallbackQuery.
type Payload interface {
	payload()
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

// File is the common shape of every media attachment.
type File struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	FileName     string `json:"file_name,omitempty"`
	Duration     int    `json:"duration,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}

type PhotoSize struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id,omitempty"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FileSize     int64  `json:"file_size,omitempty"`
}

type Location struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Message is a chat message. Exactly one payload kind is normally present.
type Message struct {
	MessageID int64       `json:"message_id"`
	From      *User       `json:"from,omitempty"`
	Chat      Chat        `json:"chat"`
	Date      int64       `json:"date,omitempty"`
	EditDate  int64       `json:"edit_date,omitempty"`
	Text      string      `json:"text,omitempty"`
	Caption   string      `json:"caption,omitempty"`
	Animation *File       `json:"animation,omitempty"`
	Audio     *File       `json:"audio,omitempty"`
	Document  *File       `json:"document,omitempty"`
	Photo     []PhotoSize `json:"photo,omitempty"`
	Sticker   *File       `json:"sticker,omitempty"`
	Video     *File       `json:"video,omitempty"`
	VideoNote *File       `json:"video_note,omitempty"`
	Voice     *File       `json:"voice,omitempty"`
	Location  *Location   `json:"location,omitempty"`
}

func (*Message) payload() {}

// Has reports whether the payload of the given kind is present.
func (m *Message) Has(k Kind) bool {
	switch k {
	case KindText:
		return m.Text != ""
	case KindAnimation:
		return m.Animation != nil
	case KindAudio:
		return m.Audio != nil
	case KindDocument:
		return m.Document != nil
	case KindPhoto:
		return len(m.Photo) > 0
	case KindSticker:
		return m.Sticker != nil
	case KindVideo:
		return m.Video != nil
	case KindVideoNote:
		return m.VideoNote != nil
	case KindVoice:
		return m.Voice != nil
	case KindLocation:
		return m.Location != nil
	}
	return false
}

// Kind returns the first payload kind present in MessageKinds order.
func (m *Message) Kind() (Kind, bool) {
	for _, k := range MessageKinds {
		if m.Has(k) {
			return k, true
		}
	}
	return "", false
}

type InlineQuery struct {
	ID     string `json:"id"`
	From   *User  `json:"from,omitempty"`
	Query  string `json:"query"`
	Offset string `json:"offset,omitempty"`
}

func (*InlineQuery) payload() {}

type CallbackQuery struct {
	ID              string   `json:"id"`
	From            *User    `json:"from,omitempty"`
	Message         *Message `json:"message,omitempty"`
	InlineMessageID string   `json:"inline_message_id,omitempty"`
	Data            string   `json:"data,omitempty"`
}

func (*CallbackQuery) payload() {}
