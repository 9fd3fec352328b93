package model

import (
	"encoding/json"
	"fmt"
)

// CommandType is the discriminator for client-to-server commands.
type CommandType string

const (
	CommandRegister     CommandType = "Register"
	CommandUnregister   CommandType = "Unregister"
	CommandFirst        CommandType = "First"
	CommandLast         CommandType = "Last"
	CommandGoTo         CommandType = "GoTo"
	CommandNext         CommandType = "Next"
	CommandPrevious     CommandType = "Previous"
	CommandNextStep     CommandType = "NextStep"
	CommandPreviousStep CommandType = "PreviousStep"
	CommandPause        CommandType = "Pause"
	CommandResume       CommandType = "Resume"
	CommandBlink        CommandType = "Blink"
	CommandPing         CommandType = "Ping"
)

// Renderer tells the server what kind of surface a registering client is.
type Renderer string

const (
	RendererTitle Renderer = "Title"
	RendererHTML  Renderer = "Html"
	RendererRaw   Renderer = "Raw"
)

// Command is the client-to-server intent vocabulary. On the wire it is a
// JSON object tagged by the "command" field, e.g. {"command":"Next"} or
// {"command":"GoTo","slide":3}. Commands carry no server-side state.
type Command struct {
	Command  CommandType `json:"command"`
	Slide    *int        `json:"slide,omitempty"`
	Client   string      `json:"client,omitempty"`
	Name     string      `json:"name,omitempty"`
	Renderer Renderer    `json:"renderer,omitempty"`
}

// NewCommand builds a payload-free command (Next, Pause, Ping, ...).
func NewCommand(kind CommandType) Command {
	return Command{Command: kind}
}

// GoToCommand builds a GoTo command targeting the given slide index.
func GoToCommand(slide int) Command {
	return Command{Command: CommandGoTo, Slide: &slide}
}

// RegisterCommand builds a Register command announcing the client.
func RegisterCommand(clientID, name string, renderer Renderer) Command {
	return Command{Command: CommandRegister, Client: clientID, Name: name, Renderer: renderer}
}

// UnregisterCommand builds an Unregister command for the given client id.
func UnregisterCommand(clientID string) Command {
	return Command{Command: CommandUnregister, Client: clientID}
}

// DecodeCommand parses a wire frame into a Command, rejecting frames
// without a known discriminator.
func DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	if err := cmd.Validate(); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	return cmd, nil
}

// Validate checks the discriminator and variant-specific payload.
func (c Command) Validate() error {
	switch c.Command {
	case CommandRegister, CommandUnregister, CommandFirst, CommandLast,
		CommandGoTo, CommandNext, CommandPrevious, CommandNextStep,
		CommandPreviousStep, CommandPause, CommandResume, CommandBlink,
		CommandPing:
	default:
		return fmt.Errorf("unknown command %q", c.Command)
	}
	if c.Command == CommandGoTo && c.Slide == nil {
		return fmt.Errorf("GoTo requires a slide index")
	}
	return nil
}

// Encode serializes the command to its wire frame.
func (c Command) Encode() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}
	return data, nil
}
