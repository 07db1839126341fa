package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// ScriptedResolver is the default resolution collaborator: a table-driven
// command interpreter over the scenario's room graph. It understands a small
// verb set (look, go, take, drop, inventory, say, give up) and narrates a
// neutral fallback for anything else, so free-text play never fails outright.
type ScriptedResolver struct {
	config *ScenarioConfig
}

// NewScriptedResolver creates a scripted resolver for the given scenario
func NewScriptedResolver(config *ScenarioConfig) *ScriptedResolver {
	return &ScriptedResolver{config: config}
}

type verbHandler func(r *ScriptedResolver, state *GameState, arg string) *Outcome

var verbTable = map[string]verbHandler{
	"look":      (*ScriptedResolver).look,
	"go":        (*ScriptedResolver).move,
	"move":      (*ScriptedResolver).move,
	"walk":      (*ScriptedResolver).move,
	"take":      (*ScriptedResolver).take,
	"get":       (*ScriptedResolver).take,
	"drop":      (*ScriptedResolver).drop,
	"inventory": (*ScriptedResolver).inventory,
	"say":       (*ScriptedResolver).say,
}

// Resolve implements Resolver
func (r *ScriptedResolver) Resolve(ctx context.Context, state *GameState, payload ActionPayload) (*GameState, *Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if state.Room() == nil {
		return nil, nil, fmt.Errorf("state has no room %q", state.CurrentRoom)
	}

	verb, arg := splitCommand(payload.Text)

	var outcome *Outcome
	switch {
	case verb == "give" && strings.HasPrefix(arg, "up"):
		outcome = &Outcome{
			Narrative: r.message(r.config.Messages.GaveUp, nil),
			Terminal:  true,
			Reason:    "gave_up",
		}
	default:
		if handler, ok := verbTable[verb]; ok {
			outcome = handler(r, state, arg)
		} else {
			outcome = &Outcome{
				Narrative: r.message(r.config.Messages.UnknownVerb, payload.Text),
			}
		}
	}

	state.Narration = outcome.Narrative
	return state, outcome, nil
}

func (r *ScriptedResolver) look(state *GameState, _ string) *Outcome {
	room := state.Room()

	var b strings.Builder
	b.WriteString(room.Name)
	b.WriteString(". ")
	b.WriteString(room.Description)
	if len(room.Items) > 0 {
		b.WriteString(" You see: ")
		b.WriteString(strings.Join(room.Items, ", "))
		b.WriteString(".")
	}
	if len(room.Exits) > 0 {
		dirs := make([]string, 0, len(room.Exits))
		for dir := range room.Exits {
			dirs = append(dirs, dir)
		}
		sort.Strings(dirs)
		b.WriteString(" Exits: ")
		b.WriteString(strings.Join(dirs, ", "))
		b.WriteString(".")
	}

	return &Outcome{Narrative: b.String()}
}

func (r *ScriptedResolver) move(state *GameState, direction string) *Outcome {
	room := state.Room()

	target, ok := room.Exits[direction]
	if !ok {
		if direction == "" {
			direction = "that way"
		}
		return &Outcome{Narrative: r.message(r.config.Messages.CannotGo, direction)}
	}

	state.CurrentRoom = target
	next := state.Room()

	if r.config.GoalRoom != "" && target == r.config.GoalRoom {
		return &Outcome{
			Narrative: next.Description + " " + r.message(r.config.Messages.Victory, nil),
			Terminal:  true,
			Reason:    "victory",
		}
	}

	return &Outcome{Narrative: next.Name + ". " + next.Description}
}

func (r *ScriptedResolver) take(state *GameState, item string) *Outcome {
	room := state.Room()

	for i, candidate := range room.Items {
		if candidate == item {
			room.Items = append(room.Items[:i], room.Items[i+1:]...)
			state.Inventory = append(state.Inventory, item)
			return &Outcome{Narrative: r.message(r.config.Messages.ItemTaken, item)}
		}
	}

	if item == "" {
		item = "such thing"
	}
	return &Outcome{Narrative: r.message(r.config.Messages.ItemMissing, item)}
}

func (r *ScriptedResolver) drop(state *GameState, item string) *Outcome {
	for i, candidate := range state.Inventory {
		if candidate == item {
			state.Inventory = append(state.Inventory[:i], state.Inventory[i+1:]...)
			room := state.Room()
			room.Items = append(room.Items, item)
			return &Outcome{Narrative: r.message(r.config.Messages.ItemDropped, item)}
		}
	}

	if item == "" {
		item = "such thing"
	}
	return &Outcome{Narrative: r.message(r.config.Messages.ItemMissing, item)}
}

func (r *ScriptedResolver) inventory(state *GameState, _ string) *Outcome {
	if len(state.Inventory) == 0 {
		return &Outcome{Narrative: r.message(r.config.Messages.EmptyPockets, nil)}
	}
	return &Outcome{Narrative: "You carry: " + strings.Join(state.Inventory, ", ") + "."}
}

func (r *ScriptedResolver) say(state *GameState, words string) *Outcome {
	if words == "" {
		return &Outcome{Narrative: "You open your mouth, then think better of it."}
	}
	return &Outcome{Narrative: fmt.Sprintf("%q echoes off the stone. Nothing answers.", words)}
}

// message formats a configured message template, falling back to a generic
// line when the scenario omits the template.
func (r *ScriptedResolver) message(tmpl string, arg any) string {
	if tmpl == "" {
		if s, ok := arg.(string); ok && s != "" {
			return fmt.Sprintf("Nothing comes of %q.", s)
		}
		return "Nothing happens."
	}
	if strings.Contains(tmpl, "%") && arg != nil {
		return fmt.Sprintf(tmpl, arg)
	}
	return tmpl
}

// splitCommand lowercases the input and splits off the leading verb
func splitCommand(text string) (verb, arg string) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	if len(fields) == 0 {
		return "", ""
	}
	verb = fields[0]
	// "go to the north" and "take the torch" should still work
	rest := fields[1:]
	for len(rest) > 0 && (rest[0] == "to" || rest[0] == "the" || rest[0] == "a") {
		rest = rest[1:]
	}
	return verb, strings.Join(rest, " ")
}
