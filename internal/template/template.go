package template

import (
	"fmt"
	"strings"
)

// Conversation carries the role-formatting metadata for a chat-style
// prompt family.
type Conversation struct {
	Name   string
	System string
	Roles  [2]string
	Sep    string
	Sep2   string
}

// Registry entries are copied on retrieval, so Get can normalize a
// template without mutating shared state.
var registry = map[string]Conversation{
	"raw": {
		Name:  "raw",
		Roles: [2]string{"", ""},
	},
	"vicuna_v1.1": {
		Name: "vicuna_v1.1",
		System: "A chat between a curious user and an artificial intelligence assistant. " +
			"The assistant gives helpful, detailed, and polite answers to the user's questions.",
		Roles: [2]string{"USER", "ASSISTANT"},
		Sep:   " ",
		Sep2:  "</s>",
	},
	"llama-2": {
		Name:   "llama-2",
		System: "",
		Roles:  [2]string{"[INST]", "[/INST]"},
		Sep:    " ",
		Sep2:   " </s><s>",
	},
}

// Get retrieves a conversation template by name. The llama-2 template's
// trailing separator carries surrounding whitespace upstream and is
// stripped here, exactly once, before the copy is handed out.
func Get(name string) (Conversation, error) {
	conv, ok := registry[name]
	if !ok {
		return Conversation{}, fmt.Errorf("template: unknown conversation template %q", name)
	}
	if conv.Name == "llama-2" {
		conv.Sep2 = strings.TrimSpace(conv.Sep2)
	}
	return conv, nil
}

// Prompt renders a single-turn user message in this conversation's format.
func (c Conversation) Prompt(message string) string {
	switch c.Name {
	case "llama-2":
		var sb strings.Builder
		sb.WriteString(c.Roles[0])
		sb.WriteString(" ")
		if c.System != "" {
			sb.WriteString("<<SYS>>\n")
			sb.WriteString(c.System)
			sb.WriteString("\n<</SYS>>\n\n")
		}
		sb.WriteString(message)
		sb.WriteString(" ")
		sb.WriteString(c.Roles[1])
		return sb.String()
	case "raw":
		return message
	default:
		var sb strings.Builder
		if c.System != "" {
			sb.WriteString(c.System)
			sb.WriteString(c.Sep)
		}
		sb.WriteString(c.Roles[0])
		sb.WriteString(": ")
		sb.WriteString(message)
		sb.WriteString(c.Sep)
		sb.WriteString(c.Roles[1])
		sb.WriteString(":")
		return sb.String()
	}
}
