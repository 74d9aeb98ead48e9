package model

import "time"

// StatusCheck records that a client checked in.
type StatusCheck struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// StatusCheckCreate is the body of a status check creation.
type StatusCheckCreate struct {
	ClientName string `json:"client_name"`
}
