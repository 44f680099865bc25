package whatsapp

// Webhook payload types, as delivered by the Cloud API to the callback URL.

// Payload is the top-level webhook delivery.
type Payload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry represents one business account entry.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change wraps a single change notification.
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue carries inbound messages and/or delivery statuses.
type ChangeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

// Metadata about the receiving phone number.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact is the sender's WhatsApp profile.
type Contact struct {
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
	WaID string `json:"wa_id"`
}

// Message is an inbound user message. Only the parts the relay reads are
// modelled.
type Message struct {
	From        string              `json:"from"` // E.164 digits, no "+"
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *TextContent        `json:"text,omitempty"`
	Button      *ButtonContent      `json:"button,omitempty"`
	Interactive *InteractiveContent `json:"interactive,omitempty"`
}

// TextContent holds a text message body.
type TextContent struct {
	Body string `json:"body"`
}

// ButtonContent is a quick-reply button press on a template.
type ButtonContent struct {
	Text    string `json:"text"`
	Payload string `json:"payload"`
}

// InteractiveContent is a reply to an interactive message.
type InteractiveContent struct {
	Type        string       `json:"type"`
	ButtonReply *ReplyOption `json:"button_reply,omitempty"`
	ListReply   *ReplyOption `json:"list_reply,omitempty"`
}

// ReplyOption is the option the user picked.
type ReplyOption struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Status is a delivery status update (sent, delivered, read, failed).
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// ExtractText returns the best-effort text of m: the text body when a text
// object is present, else the button text for "button" messages, else the
// button reply title for "interactive" messages. The first source present
// wins even when it is empty. ok is false when the result is empty.
func ExtractText(m Message) (text string, ok bool) {
	switch {
	case m.Text != nil:
		text = m.Text.Body
	case m.Type == "button" && m.Button != nil:
		text = m.Button.Text
	case m.Type == "interactive" && m.Interactive != nil && m.Interactive.ButtonReply != nil:
		text = m.Interactive.ButtonReply.Title
	}
	return text, text != ""
}

// ReplyText is the acknowledgment sent back for an inbound message.
func ReplyText(text string, ok bool) string {
	if ok {
		return `Recibido: "` + text + `". Gracias por escribir.`
	}
	return "Recibido. Gracias por escribir."
}
