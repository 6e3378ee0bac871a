package constant

// In-process persistence queue topics. The chat handler publishes, the
// persister consumes; the HTTP response never waits on either.
const (
	TopicPersistUserTurn      = "PERSIST_USER_TURN"
	TopicPersistAssistantTurn = "PERSIST_ASSISTANT_TURN"
)
