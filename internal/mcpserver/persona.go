package mcpserver

import (
	"github.com/starford/unpack/internal/conversation"
)

// PersonaURI is the resource describing the companion's voice.
const PersonaURI = "unpack://companion-persona"

// PersonaDocument is the companion persona as served to MCP clients, with
// the shape of the per-tangent context the companion receives.
var PersonaDocument = `# Unpack Companion Persona

The companion answers inside one tangent conversation of a journal entry.
Replies follow the voice below.

## Voice

` + conversation.Persona + `

## Tangent context

Each conversation is grounded in a context block of this form:

` + "```" + `
Tangent: <name>
Emotion: <emotion>
From journal entry: <first 500 characters of the entry text>
Overview: <entry overview>
` + "```" + `

Missing fields read "Not available".
`
