/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses, event acknowledgments, and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
// Messages surfaced through join/sendMessage acknowledgments are part of the wire contract
// expected by the chat frontend, so they must not be reworded casually.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrInvalidJSONFormat: {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Presence and Chat Business Logic Errors
	ErrUsernameAndRoomRequired: {Code: ErrUsernameAndRoomRequired, Message: "Username and room are required!"},
	ErrUsernameTaken:           {Code: ErrUsernameTaken, Message: "Username is in use!"},
	ErrNotJoined:               {Code: ErrNotJoined, Message: "Join a room first."},
	ErrAlreadyJoined:           {Code: ErrAlreadyJoined, Message: "You are already in a room."},
	ErrProfanity:               {Code: ErrProfanity, Message: "Profanity not allowed here!"},
	ErrMessageTooLong:          {Code: ErrMessageTooLong, Message: "Message is too long."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
