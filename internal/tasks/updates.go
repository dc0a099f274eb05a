package tasks

import "fmt"

// Notice is a short status event emitted by engine mutations.
//
// The UI renders notices on the toast line; the CLI logs them.
type Notice struct {
	Level   Level
	Message string
}

// Level classifies a notice for display styling.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return ""
	}
}

func infoNotice(format string, args ...any) Notice {
	return Notice{Level: LevelInfo, Message: fmt.Sprintf(format, args...)}
}

func warnNotice(format string, args ...any) Notice {
	return Notice{Level: LevelWarn, Message: fmt.Sprintf(format, args...)}
}

func errorNotice(format string, args ...any) Notice {
	return Notice{Level: LevelError, Message: fmt.Sprintf(format, args...)}
}
