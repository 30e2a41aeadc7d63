package domain

// InboundMessage es la forma canónica de un callback del proveedor
type InboundMessage struct {
	Phone      string // solo dígitos
	MessageID  string // opcional
	Text       string
	SenderName string
	FromMe     bool
}

// Status is the outcome reported back to the provider. The HTTP code is 200
// for all three values.
type Status string

const (
	StatusIgnored Status = "ignored"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Reason codes reported alongside StatusIgnored or StatusError.
const (
	ReasonInvalidJSON        = "invalid_json"
	ReasonEmptyBody          = "empty_body"
	ReasonNotAnObject        = "not_an_object"
	ReasonFromMe             = "from_me"
	ReasonGroupMessage       = "group_message"
	ReasonMissingPhone       = "missing_phone"
	ReasonMissingText        = "missing_text"
	ReasonDuplicateMessage   = "duplicate_message"
	ReasonDuplicateMessageID = "duplicate_message_id"
	ReasonUnauthorized       = "unauthorized"
	ReasonQueued             = "queued"
	ReasonMissingCredentials = "missing_provider_credentials"
	ReasonInternal           = "internal_error"
	ReasonRateLimited        = "rate_limited"
)

// Result resume el procesamiento de un webhook
type Result struct {
	Status       Status `json:"status"`
	Reason       string `json:"reason,omitempty"`
	MessageID    string `json:"message_id,omitempty"`
	Intent       Intent `json:"intent,omitempty"`
	Assistant    string `json:"assistant,omitempty"`
	ThreadID     string `json:"thread_id,omitempty"`
	ReplySource  string `json:"reply_source,omitempty"`
	ReplySent    bool   `json:"reply_sent"`
	SendError    string `json:"send_error,omitempty"`
	WelcomeSent  bool   `json:"welcome_sent,omitempty"`
	ReminderSent bool   `json:"reminder_sent,omitempty"`
}

func Ignored(reason string) Result {
	return Result{Status: StatusIgnored, Reason: reason}
}
