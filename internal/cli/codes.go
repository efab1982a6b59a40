package cli

// Command error codes (E200-E299). Metadata load and validation codes
// (E0xx, E1xx) come from the meta package.
const (
	ErrCodeConfig    = "E201" // configuration file error
	ErrCodeInvoke    = "E202" // invocation file error
	ErrCodeBuild     = "E203" // schedule construction error
	ErrCodeAnalysis  = "E204" // dependence analysis error
	ErrCodeScript    = "E205" // transformation script error
	ErrCodeTransform = "E206" // transformation application error
	ErrCodeStore     = "E207" // provenance store error
	ErrCodeWrite     = "E208" // output write error
	ErrCodeHistory   = "E209" // history query error
)
