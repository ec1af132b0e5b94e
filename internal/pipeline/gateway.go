package pipeline

// Message identifies an editable chat message produced by the gateway.
type Message struct {
	ChatID int64
	ID     int
}

// Gateway is the outbound messaging surface a pipeline run needs. The
// Telegram-backed implementation lives in the app wiring; tests use fakes.
type Gateway interface {
	SendText(userID int64, text string) (Message, error)
	EditText(msg Message, text string) error
	SendAudio(userID int64, filePath, caption string) error
}
