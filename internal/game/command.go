package game

import (
	"strings"

	"github.com/pavelanni/spacequiz/internal/model"
)

// Direction is a horizontal movement intent.
type Direction string

const (
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// CommandKind enumerates input delivered to a running game.
type CommandKind string

const (
	CommandMove  CommandKind = "move"
	CommandFire  CommandKind = "fire"
	CommandPause CommandKind = "pause"
)

// Command is one discrete input event.
type Command struct {
	Kind      CommandKind
	Direction Direction
	On        bool
	Label     model.Label
}

// Apply routes a command to the game and reports whether it changed anything.
func (g *Game) Apply(cmd Command) bool {
	switch cmd.Kind {
	case CommandMove:
		return g.SetIntent(cmd.Direction, cmd.On)
	case CommandFire:
		return g.Fire(cmd.Label)
	case CommandPause:
		return g.TogglePause()
	}
	return false
}

var fireKeys = map[string]model.Label{
	"a": model.LabelA,
	"s": model.LabelB,
	"d": model.LabelC,
	"f": model.LabelD,
	"w": model.LabelTrue,
	"e": model.LabelFalse,
	" ": model.LabelSubmit,
}

// KeyCommand maps a browser KeyboardEvent.key value to a command.
// Arrow keys set intents on press and clear them on release; every other
// key acts on press only.
func KeyCommand(key string, down bool) (Command, bool) {
	k := strings.ToLower(key)
	switch k {
	case "arrowleft":
		return Command{Kind: CommandMove, Direction: DirLeft, On: down}, true
	case "arrowright":
		return Command{Kind: CommandMove, Direction: DirRight, On: down}, true
	}
	if !down {
		return Command{}, false
	}
	if k == "p" {
		return Command{Kind: CommandPause}, true
	}
	if label, ok := fireKeys[k]; ok {
		return Command{Kind: CommandFire, Label: label}, true
	}
	return Command{}, false
}
