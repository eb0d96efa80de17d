// Package actions executes structured intents: fixed, parameter-light
// operations like latency checks and profile lookups, distinguished from
// open-ended text generation. Transport-specific facts come through the
// InfoProvider interface.
package actions
