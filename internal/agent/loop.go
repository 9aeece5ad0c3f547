// Package agent drives the multi-turn tool-calling conversation with a
// model. The loop is a bounded state machine: every model turn is parsed
// into a typed outcome before it can touch any state, malformed turns cost
// a step and earn corrective feedback, and the run always terminates
// within the configured step budget.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vuebench/vuebench/internal/llm"
	"github.com/vuebench/vuebench/internal/tools"
)

type Outcome string

const (
	OutcomeSucceeded        Outcome = "succeeded"
	OutcomeMaxStepsExceeded Outcome = "max_steps_exceeded"
	OutcomeUnrecoverable    Outcome = "unrecoverable_error"
)

// Step is one entry of the append-only audit trail: the model's raw turn,
// what it parsed to, and what executing it produced.
type Step struct {
	Index     int
	RawTurn   string
	Call      *ToolCall
	Result    *tools.ToolResult
	ParseErr  string
	Timestamp time.Time
}

// RunResult is the terminal classification of one agent run.
type RunResult struct {
	Outcome         Outcome
	Steps           []Step
	StepCount       int
	CompileAttempts int
	Tokens          int
	Duration        time.Duration
}

// Loop runs one agent conversation against one tool registry.
type Loop struct {
	Client   llm.Client
	Model    string
	Registry *tools.Registry
	MaxSteps int
}

// Run executes the loop until the model calls finish, the step budget is
// exhausted, or the transport fails. Transport and toolchain failures
// return a non-nil error alongside the partial result; they are
// configuration problems, not agent behavior, and are never retried.
func (l *Loop) Run(ctx context.Context, task string) (*RunResult, error) {
	start := time.Now()
	res := &RunResult{}
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt(l.Registry.WritablePath())},
		{Role: llm.RoleUser, Content: task},
	}

	for res.StepCount < l.MaxSteps {
		chat, err := l.Client.Chat(ctx, l.Model, messages)
		if err != nil {
			res.Outcome = OutcomeUnrecoverable
			res.Duration = time.Since(start)
			return res, fmt.Errorf("model turn %d: %w", res.StepCount+1, err)
		}
		res.Tokens += chat.Tokens

		step := Step{
			Index:     res.StepCount + 1,
			RawTurn:   chat.Text,
			Timestamp: time.Now(),
		}
		messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: chat.Text})

		call, perr := ParseToolCall(chat.Text)
		if perr != nil {
			step.ParseErr = perr.Error()
			res.Steps = append(res.Steps, step)
			res.StepCount++
			messages = append(messages, llm.Message{
				Role:    llm.RoleUser,
				Content: correctiveFeedback(perr),
			})
			continue
		}
		step.Call = call

		if call.Name == tools.ToolFinish {
			res.Steps = append(res.Steps, step)
			res.StepCount++
			res.Outcome = OutcomeSucceeded
			res.Duration = time.Since(start)
			return res, nil
		}

		result, err := l.dispatch(ctx, call)
		if err != nil {
			res.Steps = append(res.Steps, step)
			res.StepCount++
			res.Outcome = OutcomeUnrecoverable
			res.Duration = time.Since(start)
			return res, fmt.Errorf("executing %s: %w", call.Name, err)
		}
		if call.Name == tools.ToolRunCompilation {
			res.CompileAttempts++
		}
		step.Result = &result
		res.Steps = append(res.Steps, step)
		res.StepCount++
		messages = append(messages, llm.Message{
			Role:    llm.RoleUser,
			Content: "Tool result:\n" + result.Output(),
		})
	}

	res.Outcome = OutcomeMaxStepsExceeded
	res.Duration = time.Since(start)
	return res, nil
}

// dispatch executes one parsed call. The switch is exhaustive over the
// fixed tool set; the parser has already rejected unknown names. A
// returned error means the validation toolchain itself is broken.
func (l *Loop) dispatch(ctx context.Context, call *ToolCall) (tools.ToolResult, error) {
	switch call.Name {
	case tools.ToolReadFile:
		return l.Registry.Read(call.StringArg("path")), nil
	case tools.ToolWriteFile:
		return l.Registry.Write(call.StringArg("path"), call.StringArg("content")), nil
	case tools.ToolListFiles:
		return l.Registry.List(call.StringArg("directory")), nil
	case tools.ToolRunCompilation:
		comp, err := l.Registry.Compile(ctx)
		if err != nil {
			return tools.ToolResult{}, err
		}
		return tools.ToolResult{OK: true, Payload: formatCompilation(comp.Success, comp.Errors)}, nil
	}
	return tools.ToolResult{}, fmt.Errorf("unhandled tool %q", call.Name)
}

func formatCompilation(success bool, errs []string) string {
	if success {
		return "Compilation succeeded."
	}
	if len(errs) == 0 {
		return "Compilation failed."
	}
	return strings.Join(errs, "\n")
}

func correctiveFeedback(perr error) string {
	return fmt.Sprintf(
		"Your last message could not be parsed as a tool call (%v). "+
			"Respond with exactly one JSON code block containing \"name\" and \"arguments\".",
		perr)
}

func systemPrompt(writablePath string) string {
	var b strings.Builder
	b.WriteString("You are a coding agent working on a Vue + TypeScript project.\n")
	b.WriteString("On every turn respond with exactly one JSON code block invoking a tool:\n\n")
	b.WriteString("```json\n{\"name\": \"read_file\", \"arguments\": {\"path\": \"src/App.vue\"}}\n```\n\n")
	b.WriteString("Available tools:\n")
	for _, spec := range tools.Specs() {
		b.WriteString("- ")
		b.WriteString(spec.Name)
		b.WriteString("(")
		for i, p := range spec.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Name)
			b.WriteString(" ")
			b.WriteString(string(p.Type))
			if !p.Required {
				b.WriteString("?")
			}
		}
		b.WriteString("): ")
		b.WriteString(spec.Description)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nOnly %s may be written. ", writablePath)
	b.WriteString("Verify your fix with run_compilation before calling finish, and call finish when the task is done.")
	return b.String()
}
