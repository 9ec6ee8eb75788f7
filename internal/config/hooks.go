package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

var actionType = reflect.TypeOf(Action{})

// actionHook decodes the two spellings of an action: the bare string
// "remove" and the single-key map {replace: <template>}
func actionHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != actionType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return parseActionString(v)
		case map[string]any:
			return parseActionMap(v)
		case map[any]any:
			m := make(map[string]any, len(v))
			for key, value := range v {
				m[fmt.Sprint(key)] = value
			}
			return parseActionMap(m)
		}

		return data, nil
	}
}

func parseActionString(s string) (Action, error) {
	switch ActionKind(strings.ToLower(strings.TrimSpace(s))) {
	case ActionRemove:
		return RemoveAction(), nil
	case ActionReplace:
		return Action{}, fmt.Errorf("action %q needs a template: use {replace: <template>}", s)
	}
	return Action{}, fmt.Errorf("unknown action %q", s)
}

func parseActionMap(m map[string]any) (Action, error) {
	if len(m) != 1 {
		// already in decoded form, e.g. {kind: replace, template: ...}
		if _, ok := m["kind"]; ok {
			return decodeExplicitAction(m)
		}
		return Action{}, fmt.Errorf("action must have exactly one key, got %d", len(m))
	}

	for key, value := range m {
		switch ActionKind(strings.ToLower(key)) {
		case ActionRemove:
			return RemoveAction(), nil
		case ActionReplace:
			template, ok := value.(string)
			if !ok {
				return Action{}, fmt.Errorf("replace template must be a string, got %T", value)
			}
			return ReplaceAction(template), nil
		case "kind":
			return decodeExplicitAction(m)
		default:
			return Action{}, fmt.Errorf("unknown action %q", key)
		}
	}

	return Action{}, nil
}

func decodeExplicitAction(m map[string]any) (Action, error) {
	var a Action
	if err := mapstructure.Decode(m, &a); err != nil {
		return Action{}, fmt.Errorf("decode action: %w", err)
	}
	return a, nil
}
