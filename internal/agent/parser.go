package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/vuebench/vuebench/internal/tools"
)

// Parse failure reasons. These come back to the model as corrective
// feedback; they never escape the loop as exceptions.
var (
	ErrMalformedToolCall = errors.New("malformed tool call")
	ErrUnknownTool       = errors.New("unknown tool")
	ErrInvalidArguments  = errors.New("invalid arguments")
)

// ToolCall is one structured tool invocation parsed from a model turn.
type ToolCall struct {
	Name string
	Args map[string]any
}

// StringArg returns the named argument when it is a string, else "".
func (c *ToolCall) StringArg(name string) string {
	if s, ok := c.Args[name].(string); ok {
		return s
	}
	return ""
}

var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z0-9]*[ \t]*\r?\n(.*?)```")

// ParseToolCall extracts a tool invocation from one turn of model output.
// The turn must contain exactly one fenced code block holding a JSON
// object with "name" and "arguments" keys. Prose around the block is
// ignored here (the caller keeps the raw turn for its audit trail).
// Unknown argument names are tolerated; verbose models add them.
func ParseToolCall(turn string) (*ToolCall, error) {
	blocks := fencedBlock.FindAllStringSubmatch(turn, -1)
	switch len(blocks) {
	case 0:
		return nil, fmt.Errorf("%w: no fenced code block found", ErrMalformedToolCall)
	case 1:
	default:
		return nil, fmt.Errorf("%w: found %d fenced code blocks, want exactly 1", ErrMalformedToolCall, len(blocks))
	}

	var payload struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(blocks[0][1]), &payload); err != nil {
		return nil, fmt.Errorf("%w: code block is not valid JSON: %v", ErrMalformedToolCall, err)
	}
	if payload.Name == "" {
		return nil, fmt.Errorf("%w: missing \"name\" key", ErrMalformedToolCall)
	}

	spec, ok := tools.SpecByName(payload.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, payload.Name)
	}
	if payload.Arguments == nil {
		payload.Arguments = map[string]any{}
	}
	if err := checkArgs(spec, payload.Arguments); err != nil {
		return nil, err
	}

	return &ToolCall{Name: payload.Name, Args: payload.Arguments}, nil
}

func checkArgs(spec tools.ToolSpec, args map[string]any) error {
	for _, p := range spec.Params {
		val, present := args[p.Name]
		if !present {
			if p.Required {
				return fmt.Errorf("%w: missing required parameter %q for %s", ErrInvalidArguments, p.Name, spec.Name)
			}
			continue
		}
		if !typeMatches(p.Type, val) {
			return fmt.Errorf("%w: parameter %q for %s must be a %s", ErrInvalidArguments, p.Name, spec.Name, p.Type)
		}
	}
	return nil
}

func typeMatches(t tools.ParamType, val any) bool {
	switch t {
	case tools.TypeString:
		_, ok := val.(string)
		return ok
	case tools.TypeNumber:
		_, ok := val.(float64)
		return ok
	case tools.TypeBoolean:
		_, ok := val.(bool)
		return ok
	}
	return false
}
