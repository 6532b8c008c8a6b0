package viewer

// Action is a discrete viewer command.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionResetCamera
	ActionNextDefinition
	ActionPrevDefinition
	ActionToggleSlot
	ActionToggleSurfaces
	ActionToggleEdges
	ActionToggleBounds
	ActionTogglePreview
	ActionReload
	ActionSnapshot
)

var actionNames = map[Action]string{
	ActionNone:           "none",
	ActionQuit:           "quit",
	ActionResetCamera:    "reset-camera",
	ActionNextDefinition: "next",
	ActionPrevDefinition: "prev",
	ActionToggleSlot:     "toggle-slot",
	ActionToggleSurfaces: "toggle-surfaces",
	ActionToggleEdges:    "toggle-edges",
	ActionToggleBounds:   "toggle-bounds",
	ActionTogglePreview:  "toggle-preview",
	ActionReload:         "reload",
	ActionSnapshot:       "snapshot",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// Command is an action with its argument.
type Command struct {
	Action Action
	Slot   int // mesh slot for ActionToggleSlot
}

// Effects reports what Apply could not handle itself and leaves to the
// caller's loop.
type Effects struct {
	Quit           bool
	Snapshot       bool
	PreviewChanged bool
}
