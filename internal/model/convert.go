package model

import (
	"strings"

	"github.com/cloudwego/eino/schema"
)

// splitSystem separates system instructions from the conversation turns for
// providers that take the system prompt out of band.
func splitSystem(messages []*schema.Message) (string, []*schema.Message) {
	var system []string
	turns := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == schema.System {
			system = append(system, msg.Content)
			continue
		}
		turns = append(turns, msg)
	}
	return strings.Join(system, "\n\n"), turns
}

// singleMessageStream adapts a Generate call for models without native
// streaming.
func singleMessageStream(msg *schema.Message) *schema.StreamReader[*schema.Message] {
	return schema.StreamReaderFromArray([]*schema.Message{msg})
}
