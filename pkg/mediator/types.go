package mediator

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Response codes. CodeOK is the only success; every other code is a
// failure whose meaning belongs to the caller.
const (
	CodeOK               = 200
	CodeCanceled         = 404
	CodeInternal         = 500
	CodeNotImplemented   = 501
	CodeTransportFailure = 502
	CodeUnavailable      = 503
)

// Targets and channels of the privileged backend
const (
	TargetMain   = "main"
	ChannelMain  = "service:main"
	ChannelTheme = "service:theme"
)

// Actions understood by the backend
const (
	ActionReGeneratePacFile  = "reGeneratePacFile"
	ActionListenForUpdate    = "listenForUpdate"
	ActionUnlistenForUpdate  = "unlistenForUpdate"
	ActionGetSystemThemeInfo = "getSystemThemeInfo"
	ActionSetAclURL          = "setAclUrl"
	ActionGetStartupOnBoot   = "getStartupOnBoot"
	ActionSetStartupOnBoot   = "setStartupOnBoot"
	ActionSaveUserPacRules   = "saveUserPacRules"
)

// Request is a single command for the backend
type Request struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

// Response is the backend's coded answer
type Response struct {
	Code   int `json:"code"`
	Result any `json:"result,omitempty"`
	Error  any `json:"error,omitempty"`
}

func (r Response) OK() bool {
	return r.Code == CodeOK
}

// Canceled reports the user aborted the operation on the backend side
func (r Response) Canceled() bool {
	return r.Code == CodeCanceled
}

// ErrorText renders the error payload, if any
func (r Response) ErrorText() string {
	if r.Error == nil {
		return ""
	}
	if s, ok := r.Error.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", r.Error)
}

// DecodeResult decodes the result payload into out, which must be a pointer
func (r Response) DecodeResult(out any) error {
	if r.Result == nil {
		return fmt.Errorf("response has no result")
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(r.Result); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	return nil
}

// Fail builds a failure response carrying err
func Fail(code int, err error) Response {
	resp := Response{Code: code}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// Success builds a 200 response
func Success(result any) Response {
	return Response{Code: CodeOK, Result: result}
}
