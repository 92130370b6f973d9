package domain

import "time"

// IssueComment is a message attached to an issue. Internal comments are
// hidden from the reporter; the sweepers use them as a notification side
// channel, authored as the reporter because there is no separate system
// identity in the reference flow.
type IssueComment struct {
	ID         string
	IssueID    string
	UserID     string
	Comment    string
	IsInternal bool
	CreatedAt  time.Time
}
