// Package frontend connects the bot to a Matrix homeserver. It turns sync
// events into inbound messages for the reply service, renders outbound
// replies as HTML-formatted notices, and answers the action layer's
// latency/room/member questions from the Matrix client-server API.
package frontend
