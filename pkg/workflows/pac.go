// Package workflows holds the request/response cycles the settings
// surface runs against the backend: PAC regeneration, theme sync, ACL
// selection and startup registration.
package workflows

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/proxydesk/proxydesk-terminal/pkg/events"
	"github.com/proxydesk/proxydesk-terminal/pkg/mediator"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
	"github.com/proxydesk/proxydesk-terminal/pkg/status"
)

// WaitingReleaseDelay is how long the waiting status stays up after the
// backend answers a PAC regeneration
const WaitingReleaseDelay = time.Second

const (
	MsgSuccessfulOperation = "Successful operation"
	MsgFailedToDownload    = "Failed to download file"
	MsgFailedOperation     = "Failed operation"
	MsgUserCanceled        = "User canceled"
)

var ErrBusy = errors.New("PAC regeneration already in progress")

// PacSource is where the new PAC file comes from: a list URL or literal
// rule text
type PacSource struct {
	URL  string
	Text string
}

func (s PacSource) params() map[string]any {
	params := map[string]any{}
	if s.URL != "" {
		params["url"] = s.URL
	}
	if s.Text != "" {
		params["text"] = s.Text
	}
	return params
}

type PacState int

const (
	PacIdle PacState = iota
	PacRequesting
)

func (s PacState) String() string {
	if s == PacRequesting {
		return "requesting"
	}
	return "idle"
}

// PacRegenerator asks the backend to rebuild the PAC file
type PacRegenerator struct {
	invoker mediator.Invoker
	status  *status.Board
	bus     *events.Bus
	logger  *zap.Logger

	// releaseDelay is WaitingReleaseDelay outside of tests
	releaseDelay time.Duration

	mu    sync.Mutex
	state PacState
}

// NewPacRegenerator creates an idle regenerator
func NewPacRegenerator(invoker mediator.Invoker, board *status.Board, bus *events.Bus, logger *zap.Logger) *PacRegenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PacRegenerator{
		invoker:      invoker,
		status:       board,
		bus:          bus,
		logger:       logger,
		releaseDelay: WaitingReleaseDelay,
	}
}

func (p *PacRegenerator) State() PacState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Regenerate raises the waiting status and sends reGeneratePacFile with src
// merged with snapshot. The outcome is notified on the bus as soon as the
// backend answers. Waiting is cleared WaitingReleaseDelay later, after which
// the response is delivered on the returned channel.
func (p *PacRegenerator) Regenerate(src PacSource, snapshot models.Settings) <-chan mediator.Response {
	result := make(chan mediator.Response, 1)

	p.mu.Lock()
	if p.state == PacRequesting {
		p.mu.Unlock()
		result <- mediator.Fail(mediator.CodeUnavailable, ErrBusy)
		return result
	}
	p.state = PacRequesting
	p.mu.Unlock()

	p.status.SetWaiting(true)

	params := src.params()
	params["settings"] = snapshot
	pending := p.invoker.Invoke(mediator.TargetMain, mediator.ChannelMain, mediator.Request{
		Action: mediator.ActionReGeneratePacFile,
		Params: params,
	})

	go func() {
		resp := <-pending
		if resp.OK() {
			p.logger.Info("PAC file regenerated")
			p.bus.Notify(MsgSuccessfulOperation, models.VariantSuccess)
		} else {
			p.logger.Warn("PAC regeneration failed", zap.Int("code", resp.Code), zap.String("error", resp.ErrorText()))
			p.bus.Notify(MsgFailedToDownload, models.VariantError)
		}

		time.AfterFunc(p.releaseDelay, func() {
			p.status.SetWaiting(false)
			p.mu.Lock()
			p.state = PacIdle
			p.mu.Unlock()
			result <- resp
		})
	}()

	return result
}

// PacRulesEditor saves the user's own PAC rules on the backend
type PacRulesEditor struct {
	invoker mediator.Invoker
	touch   Toucher
	bus     *events.Bus
	logger  *zap.Logger
}

// NewPacRulesEditor creates the user PAC rules editor
func NewPacRulesEditor(invoker mediator.Invoker, touch Toucher, bus *events.Bus, logger *zap.Logger) *PacRulesEditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PacRulesEditor{invoker: invoker, touch: touch, bus: bus, logger: logger}
}

// Save sends saveUserPacRules and, once stored, marks pac as changed so
// the server reconnects on teardown
func (e *PacRulesEditor) Save(ctx context.Context, rules string) error {
	var resp mediator.Response
	select {
	case resp = <-e.invoker.Invoke(mediator.TargetMain, mediator.ChannelMain, mediator.Request{
		Action: mediator.ActionSaveUserPacRules,
		Params: map[string]any{"rules": rules},
	}):
	case <-ctx.Done():
		return ctx.Err()
	}

	if !resp.OK() {
		e.bus.Notify(MsgFailedOperation, models.VariantError)
		return fmt.Errorf("saving PAC rules failed with code %d: %s", resp.Code, resp.ErrorText())
	}
	e.touch.Touch(models.FieldPac)
	e.bus.Notify(MsgSuccessfulOperation, models.VariantSuccess)
	e.logger.Info("user PAC rules saved", zap.Int("bytes", len(rules)))
	return nil
}

// PacURL is where the local PAC server serves the generated file
func PacURL(s models.Settings) string {
	return fmt.Sprintf("http://127.0.0.1:%d/proxy.pac", s.PacPort)
}
