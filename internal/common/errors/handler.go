package errors

// ErrorHandler converts failures into user-visible messages at the boundary
// where they surface. Nothing is retried; prior state is left untouched.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err and returns the message to display for the given action.
func (h *ErrorHandler) Handle(action string, err error) string {
	if err == nil {
		return ""
	}
	stdErr := AsStandard(err)

	fields := map[string]interface{}{
		"action":        action,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if stdErr.StatusCode != 0 {
		fields["statusCode"] = stdErr.StatusCode
	}

	// user mistakes are not operational errors
	if GetErrorCategory(stdErr.Code) == "USER" {
		h.logger.Warn("action rejected", fields)
	} else {
		h.logger.Error("action failed", fields)
	}

	return UserMessage(stdErr)
}
