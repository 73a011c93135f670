package models

import "time"

// Item kinds. The core treats items as opaque; the kind is carried through
// for listings only.
const (
	ItemKindPrompt   = "prompt"
	ItemKindAgent    = "agent"
	ItemKindRule     = "rule"
	ItemKindTemplate = "template"
)

// ContextItem is an externally owned content record (prompt, agent
// definition, rule, template). The collections core only uses it as the
// target of folder-membership links and never touches its content.
type ContextItem struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Kind      string    `json:"kind" db:"kind"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
