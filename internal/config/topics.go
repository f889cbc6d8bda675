package config

const (
	// TopicIntakeEmail carries mailbox payloads from the watcher to the intake consumer.
	TopicIntakeEmail = "intake.email"

	// TopicDocumentPublished announces every created or updated document.
	TopicDocumentPublished = "document.published"
)
