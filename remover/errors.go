package remover

import "errors"

var (
	ErrUsage          = errors.New("wrong number of arguments")
	ErrMissingInput   = errors.New("input file does not exist")
	ErrConsentRefused = errors.New("consent refused")
	ErrInstallFailure = errors.New("rembg installation failed")
	ErrCollaborator   = errors.New("background removal failed")
)

const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitCollaboratorErr = 2
)

// ExitCode 进程退出码，rembg 自身的失败单独用 2
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrCollaborator):
		return ExitCollaboratorErr
	default:
		return ExitFailure
	}
}
