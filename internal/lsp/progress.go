package lsp

import (
	"sync"
	"sync/atomic"
)

// ProgressReporter sends work done progress notifications for one
// long-running command at a time per token.
type ProgressReporter struct {
	send func(msg jsonRPCMessage) error
	mu   sync.Mutex
	seq  atomic.Int64
}

func NewProgressReporter(send func(msg jsonRPCMessage) error) *ProgressReporter {
	return &ProgressReporter{send: send}
}

// Begin creates token on the client and starts a report.
func (p *ProgressReporter) Begin(token, title string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	create := jsonRPCMessage{
		JSONRPC: "2.0",
		ID:      p.seq.Add(1),
		Method:  MethodWindowWorkDoneProgressCreate,
		Params:  mustMarshal(WorkDoneProgressCreateParams{Token: token}),
	}
	if err := p.send(create); err != nil {
		return err
	}
	return p.notify(token, WorkDoneProgressBegin{Kind: "begin", Title: title})
}

// Report sends an intermediate report. percentage is clamped to [0, 100].
func (p *ProgressReporter) Report(token, message string, percentage int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notify(token, WorkDoneProgressReport{
		Kind:       "report",
		Message:    message,
		Percentage: min(max(percentage, 0), 100),
	})
}

func (p *ProgressReporter) End(token, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notify(token, WorkDoneProgressEnd{Kind: "end", Message: message})
}

func (p *ProgressReporter) notify(token string, value any) error {
	return p.send(jsonRPCMessage{
		JSONRPC: "2.0",
		Method:  MethodProgress,
		Params:  mustMarshal(ProgressParams{Token: token, Value: value}),
	})
}
