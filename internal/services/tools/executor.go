package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sashabaranov/go-openai"

	"github.com/Josh-Mantel/MCP-F1/internal/metrics"
	"github.com/Josh-Mantel/MCP-F1/internal/services/f1"
	"github.com/Josh-Mantel/MCP-F1/internal/services/tools/models"
	"github.com/Josh-Mantel/MCP-F1/pkg/logger"
)

const (
	ToolRaceSchedule         = "get_race_schedule"
	ToolSessionResults       = "get_session_results"
	ToolDriverStandings      = "get_driver_standings"
	ToolConstructorStandings = "get_constructor_standings"
	ToolLapTimes             = "get_lap_times"
)

// Surfaces reported with tool call metrics
const (
	SurfaceMCP  = "mcp"
	SurfaceHTTP = "http"
)

var ErrInvalidArguments = errors.New("invalid arguments")

// UnknownToolError is returned for a name outside the catalog
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return "Unknown tool: " + e.Name
}

type ToolExecutor struct {
	f1Service *f1.Service
	catalog   *Service
	validate  *validator.Validate
	metrics   metrics.Recorder
}

// NewToolExecutor runs the tools listed in catalog, or in the embedded
// catalog when catalog is nil.
func NewToolExecutor(f1Service *f1.Service, catalog *Service, recorder metrics.Recorder) *ToolExecutor {
	if catalog == nil {
		catalog = NewService(nil)
	}
	if recorder == nil {
		recorder = metrics.NewNoopMetrics()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &ToolExecutor{
		f1Service: f1Service,
		catalog:   catalog,
		validate:  validate,
		metrics:   recorder,
	}
}

// Call runs a tool for a surface and returns the text shown to the caller.
// isError is set when the text describes a failure.
func (e *ToolExecutor) Call(ctx context.Context, surface, name string, arguments []byte) (text string, isError bool) {
	result, err := e.Execute(ctx, name, arguments)
	e.metrics.RecordToolCall(name, surface, err == nil)
	if err != nil {
		logger.Warn(logger.TOOLS, "Tool %s failed: %v", name, err)
		return ErrorText(err), true
	}
	return result, false
}

// ErrorText renders a tool failure the way clients see it
func ErrorText(err error) string {
	var unknown *UnknownToolError
	if errors.As(err, &unknown) {
		return unknown.Error()
	}
	return "Error: " + err.Error()
}

// Execute validates arguments and runs the named tool
func (e *ToolExecutor) Execute(ctx context.Context, name string, arguments []byte) (string, error) {
	logger.Info(logger.TOOLS, "Executing tool call: %s", name)

	if !e.catalog.Has(name) {
		return "", &UnknownToolError{Name: name}
	}

	switch name {
	case ToolRaceSchedule:
		var params models.ScheduleParams
		if err := e.decode(arguments, &params); err != nil {
			return "", err
		}

		schedule, err := e.f1Service.Schedule(ctx, params.Year)
		if err != nil {
			return "", err
		}
		return formatResult(fmt.Sprintf("F1 %d Race Schedule", params.Year), schedule)

	case ToolSessionResults:
		var params models.SessionParams
		if err := e.decode(arguments, &params); err != nil {
			return "", err
		}

		results, err := e.f1Service.SessionResults(ctx, params.Year, params.RoundNumber, params.Session)
		if err != nil {
			return "", err
		}
		return formatResult(fmt.Sprintf("F1 %d Round %d %s Results", params.Year, params.RoundNumber, params.Session), results)

	case ToolDriverStandings:
		var params models.StandingsParams
		if err := e.decode(arguments, &params); err != nil {
			return "", err
		}

		standings, err := e.f1Service.DriverStandings(ctx, params.Year, params.RoundNumber)
		if err != nil {
			return "", err
		}
		return formatResult(fmt.Sprintf("F1 %d Driver Standings (after Round %d)", params.Year, standings.AfterRound), standings)

	case ToolConstructorStandings:
		var params models.StandingsParams
		if err := e.decode(arguments, &params); err != nil {
			return "", err
		}

		standings, err := e.f1Service.ConstructorStandings(ctx, params.Year, params.RoundNumber)
		if err != nil {
			return "", err
		}
		return formatResult(fmt.Sprintf("F1 %d Constructor Standings (after Round %d)", params.Year, standings.AfterRound), standings)

	case ToolLapTimes:
		var params models.LapTimesParams
		if err := e.decode(arguments, &params); err != nil {
			return "", err
		}

		laps, err := e.f1Service.LapTimes(ctx, params.Year, params.RoundNumber, params.Session, params.Driver)
		if err != nil {
			return "", err
		}
		return formatResult(fmt.Sprintf("F1 %d Round %d %s Lap Times", params.Year, params.RoundNumber, params.Session), laps)

	default:
		return "", &UnknownToolError{Name: name}
	}
}

// ExecuteToolCall runs an OpenAI-format tool call and wraps the outcome in a
// tool message for the conversation.
func (e *ToolExecutor) ExecuteToolCall(ctx context.Context, call openai.ToolCall) openai.ChatCompletionMessage {
	msg := openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Name:       call.Function.Name,
		ToolCallID: call.ID,
	}

	if call.Type != openai.ToolTypeFunction {
		e.metrics.RecordToolCall(call.Function.Name, SurfaceHTTP, false)
		msg.Content = ErrorText(fmt.Errorf("unsupported tool type %q", call.Type))
		return msg
	}

	msg.Content, _ = e.Call(ctx, SurfaceHTTP, call.Function.Name, []byte(call.Function.Arguments))
	return msg
}

func (e *ToolExecutor) decode(arguments []byte, params interface{}) error {
	if len(strings.TrimSpace(string(arguments))) == 0 {
		arguments = []byte("{}")
	}
	if err := json.Unmarshal(arguments, params); err != nil {
		logger.Error(logger.TOOLS, "Failed to parse tool arguments: %v", err)
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	switch p := params.(type) {
	case *models.SessionParams:
		p.Session = strings.ToUpper(strings.TrimSpace(p.Session))
	case *models.LapTimesParams:
		p.Session = strings.ToUpper(strings.TrimSpace(p.Session))
		p.Driver = strings.ToUpper(strings.TrimSpace(p.Driver))
	}

	if err := e.validate.Struct(params); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %s", ErrInvalidArguments, describe(fieldErrs))
		}
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

func describe(fieldErrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param()))
		case "len":
			msgs = append(msgs, fmt.Sprintf("%s must be %s characters", fe.Field(), fe.Param()))
		case "alpha":
			msgs = append(msgs, fmt.Sprintf("%s must contain only letters", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

func formatResult(header string, v interface{}) (string, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return header + ":\n\n" + string(body), nil
}
