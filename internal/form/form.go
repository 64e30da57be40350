// Package form drives the contact form on the client side: one submission
// per user action, a single blocking alert with the outcome, and the submit
// control restored whatever happens. The fields are cleared only on success.
package form

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Alert copy shown after a submission.
const (
	SendingLabel = "Sending..."
	SuccessText  = "Thanks! Your message has been sent."
	FailureText  = "Sorry, your message could not be sent. "
)

var (
	// ErrInFlight is returned when Submit is called while the submit
	// control is still disabled by an earlier submission.
	ErrInFlight = errors.New("submission already in progress")

	// ErrRejected wraps the relay's error text when it answers ok=false.
	ErrRejected = errors.New("submission rejected")
)

// Field is a named form input.
type Field interface {
	Name() string
	Value() string
	SetValue(v string)
}

// Button is the form's submit control.
type Button interface {
	Label() string
	SetLabel(label string)
	Disabled() bool
	SetDisabled(disabled bool)
}

// Alerter shows a message and returns once it has been dismissed.
type Alerter interface {
	Alert(msg string)
}

// Response is the relay's answer to a submission.
type Response struct {
	OK         bool   `json:"ok"`
	ID         string `json:"id,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Submitter delivers the form values to the relay. A transport failure is
// an error; a relay refusal is a Response with OK unset.
type Submitter interface {
	Submit(ctx context.Context, values map[string]string) (Response, error)
}

// ContactForm ties the form's fields and button to a relay.
type ContactForm struct {
	fields []Field
	button Button
	submit Submitter
	alert  Alerter
	logger *zap.Logger
}

func NewContactForm(fields []Field, button Button, submit Submitter, alert Alerter, logger *zap.Logger) *ContactForm {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactForm{
		fields: fields,
		button: button,
		submit: submit,
		alert:  alert,
		logger: logger,
	}
}

// Values returns the current field values keyed by field name.
func (f *ContactForm) Values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, fld := range f.fields {
		out[fld.Name()] = fld.Value()
	}
	return out
}

// Submit sends the form once and alerts the outcome. The button shows
// SendingLabel and is disabled while the request runs, then gets its
// original label and enabled state back.
func (f *ContactForm) Submit(ctx context.Context) (Response, error) {
	if f.button.Disabled() {
		return Response{}, ErrInFlight
	}
	orig := f.button.Label()
	f.button.SetDisabled(true)
	f.button.SetLabel(SendingLabel)
	defer func() {
		f.button.SetDisabled(false)
		f.button.SetLabel(orig)
	}()

	res, err := f.submit.Submit(ctx, f.Values())
	if err == nil && !res.OK {
		msg := res.Error
		if msg == "" {
			msg = "Failed to send"
		}
		err = fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	if err != nil {
		f.logger.Warn("contact submission failed", zap.Error(err))
		f.alert.Alert(failureMessage(res, err))
		return res, err
	}

	f.alert.Alert(SuccessText)
	if res.PreviewURL != "" {
		f.logger.Info("preview", zap.String("url", res.PreviewURL))
	}
	for _, fld := range f.fields {
		fld.SetValue("")
	}
	return res, nil
}

// failureMessage prefers the relay's own error text.
func failureMessage(res Response, err error) string {
	if res.Error != "" {
		return FailureText + "(" + res.Error + ")"
	}
	return FailureText + "(" + err.Error() + ")"
}

// Input is an in-memory Field.
type Input struct {
	name  string
	value string
}

func NewInput(name, value string) *Input { return &Input{name: name, value: value} }

func (i *Input) Name() string { return i.name }
func (i *Input) Value() string { return i.value }
func (i *Input) SetValue(v string) { i.value = v }

// SubmitButton is an in-memory Button.
type SubmitButton struct {
	label    string
	disabled bool
}

func NewSubmitButton(label string) *SubmitButton { return &SubmitButton{label: label} }

func (b *SubmitButton) Label() string { return b.label }
func (b *SubmitButton) SetLabel(label string) { b.label = label }
func (b *SubmitButton) Disabled() bool { return b.disabled }
func (b *SubmitButton) SetDisabled(d bool) { b.disabled = d }
