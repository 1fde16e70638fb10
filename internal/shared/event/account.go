// Package event defines the messages the account module publishes.
package event

const (
	// AccountRegisteredDestination receives AccountRegisteredMessage.
	AccountRegisteredDestination string = "account.registered"
	// AccountDeletedDestination receives AccountDeletedMessage.
	AccountDeletedDestination string = "account.deleted"

	// HeaderCorrelationID carries the correlation id of the originating request.
	HeaderCorrelationID string = "cID"
)

type AccountRegisteredMessage struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type AccountDeletedMessage struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	DeletedBy int64  `json:"deleted_by"`
}
