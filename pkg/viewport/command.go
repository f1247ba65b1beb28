package viewport

// CommandKind identifies a viewport command sent by a host
type CommandKind string

const (
	// CommandReset restores the identity transform
	CommandReset CommandKind = "reset"
	// CommandSetTransform replaces the transform wholesale
	CommandSetTransform CommandKind = "set_transform"
)

// Command is a message from a hosting component to the canvas viewport
type Command struct {
	Kind      CommandKind
	Transform Transform
}

// ResetCommand builds a reset command
func ResetCommand() Command {
	return Command{Kind: CommandReset}
}

// SetTransformCommand builds a command that sets an arbitrary transform
func SetTransformCommand(t Transform) Command {
	return Command{Kind: CommandSetTransform, Transform: t}
}

// Apply executes the command against t. Unknown kinds and non-positive
// scales are ignored.
func (c Command) Apply(t *Transform) {
	switch c.Kind {
	case CommandReset:
		t.Reset()
	case CommandSetTransform:
		if c.Transform.Scale <= 0 {
			return
		}
		*t = c.Transform
	}
}
