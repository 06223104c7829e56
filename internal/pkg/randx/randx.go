/*
Package randx provides functions for generating unique identifiers.

It is primarily used to assign every accepted websocket connection an opaque,
process-unique connection id.
*/
package randx

import "github.com/google/uuid"

// ConnectionID generates a standard UUID v4 string serving as the opaque identity
// of a single live connection. Ids are never reused while a connection is live;
// a fresh one is drawn for every accepted upgrade.
func ConnectionID() string {
	return uuid.New().String()
}
