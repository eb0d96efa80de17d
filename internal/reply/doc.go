// Package reply executes routing decisions. It sits between the transport
// frontend and the collaborators, owning call deadlines, fallback
// messages, reply truncation, transcript recording, and the leveling
// hook. Collaborator failures never propagate past this layer as raw
// error text.
package reply
