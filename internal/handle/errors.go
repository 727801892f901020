package handle

import "errors"

var ErrPromptRequired = errors.New("prompt is required")

// Stage names the external call that failed.
type Stage string

const (
	StageGenerate Stage = "generate"
	StageSave     Stage = "save"
	StageList     Stage = "list"
)

type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return string(e.Stage) + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}
