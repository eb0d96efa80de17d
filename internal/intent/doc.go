// Package intent classifies free-text messages into a closed set of
// recognized intents using ordered, first-match-wins substring rules.
package intent
