package modulebuilder

import (
	"strings"

	"csystem-sip/internal/delivery/dto"
)

// OptionsEditor stages option changes for one field. Nothing reaches the
// field until Confirm; Cancel drops the buffer.
type OptionsEditor struct {
	field  *Field
	buffer []dto.FieldOptionRequest
	closed bool
}

// Options returns the staged options in order
func (o *OptionsEditor) Options() []dto.FieldOptionRequest {
	return cloneOptions(o.buffer)
}

// Add appends an option. A blank value is derived from the label.
func (o *OptionsEditor) Add(label, value string) error {
	if o.closed {
		return ErrEditorClosed
	}
	opt, err := makeOption(label, value)
	if err != nil {
		return err
	}
	if o.indexOf(opt.Value, -1) >= 0 {
		return ErrOptionExists
	}
	o.buffer = append(o.buffer, opt)
	return nil
}

// Set replaces the option at i
func (o *OptionsEditor) Set(i int, label, value string) error {
	if o.closed {
		return ErrEditorClosed
	}
	if i < 0 || i >= len(o.buffer) {
		return ErrOptionInvalid
	}
	opt, err := makeOption(label, value)
	if err != nil {
		return err
	}
	if o.indexOf(opt.Value, i) >= 0 {
		return ErrOptionExists
	}
	o.buffer[i] = opt
	return nil
}

func (o *OptionsEditor) Remove(i int) error {
	if o.closed {
		return ErrEditorClosed
	}
	if i < 0 || i >= len(o.buffer) {
		return ErrOptionInvalid
	}
	o.buffer = append(o.buffer[:i], o.buffer[i+1:]...)
	return nil
}

// Move shifts the option at from to position to
func (o *OptionsEditor) Move(from, to int) error {
	if o.closed {
		return ErrEditorClosed
	}
	if from < 0 || from >= len(o.buffer) || to < 0 || to >= len(o.buffer) {
		return ErrOptionInvalid
	}
	opt := o.buffer[from]
	o.buffer = append(o.buffer[:from], o.buffer[from+1:]...)
	o.buffer = append(o.buffer[:to], append([]dto.FieldOptionRequest{opt}, o.buffer[to:]...)...)
	return nil
}

// Confirm writes the buffer to the field and closes the editor
func (o *OptionsEditor) Confirm() error {
	if o.closed {
		return ErrEditorClosed
	}
	o.field.Def.Options = cloneOptions(o.buffer)
	o.closed = true
	return nil
}

// Cancel closes the editor without touching the field
func (o *OptionsEditor) Cancel() {
	o.buffer = nil
	o.closed = true
}

func (o *OptionsEditor) indexOf(value string, except int) int {
	for i, opt := range o.buffer {
		if i != except && opt.Value == value {
			return i
		}
	}
	return -1
}

func makeOption(label, value string) (dto.FieldOptionRequest, error) {
	label = strings.TrimSpace(label)
	value = strings.TrimSpace(value)
	if value == "" {
		value = strings.ToLower(strings.Join(strings.Fields(label), "_"))
	}
	if label == "" || value == "" {
		return dto.FieldOptionRequest{}, ErrOptionInvalid
	}
	return dto.FieldOptionRequest{Label: label, Value: value}, nil
}
