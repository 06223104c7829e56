/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request or event parameter validation failed.
	ErrInvalidParams = 1001

	// ErrInvalidJSONFormat indicates that a request body or event frame contained malformed JSON.
	ErrInvalidJSONFormat = 1002

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1003
)

// 2xxx: Presence and Chat Business Logic Errors
const (
	// ErrUsernameAndRoomRequired indicates a join attempt with an empty username or room.
	ErrUsernameAndRoomRequired = 2101

	// ErrUsernameTaken indicates the requested username is already claimed in that room.
	ErrUsernameTaken = 2102

	// ErrNotJoined indicates a chat action arrived from a connection that never joined a room.
	ErrNotJoined = 2103

	// ErrAlreadyJoined indicates a join attempt from a connection that already holds a room.
	ErrAlreadyJoined = 2104

	// ErrProfanity indicates a chat message was rejected by the moderation gate.
	ErrProfanity = 2201

	// ErrMessageTooLong indicates that the message content exceeded the maximum length limit.
	ErrMessageTooLong = 2202
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
