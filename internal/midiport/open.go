package midiport

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"
)

// VirtualOpener is implemented by drivers that can create virtual ports,
// such as rtmididrv.
type VirtualOpener interface {
	OpenVirtualIn(name string) (drivers.In, error)
	OpenVirtualOut(name string) (drivers.Out, error)
}

// ErrNoVirtual is returned when virtual ports are requested from a driver
// that cannot create them.
var ErrNoVirtual = errors.New("midiport: driver does not support virtual ports")

// PortInfo describes a port for listing.
type PortInfo struct {
	Number int
	Name   string
}

// Open resolves the input and output ports. A spec is a port name or number.
// When both specs are empty, virtual ports called virtualName are created.
func Open(drv drivers.Driver, inSpec, outSpec, virtualName string, log *zap.Logger) (*Input, *Output, error) {
	if inSpec == "" && outSpec == "" {
		return openVirtual(drv, virtualName, log)
	}
	if inSpec == "" || outSpec == "" {
		return nil, nil, fmt.Errorf("midiport: both input and output must be given (in=%q, out=%q)", inSpec, outSpec)
	}

	ins, err := drv.Ins()
	if err != nil {
		return nil, nil, fmt.Errorf("list inputs: %w", err)
	}
	in, err := find(ins, inSpec)
	if err != nil {
		return nil, nil, fmt.Errorf("input: %w", err)
	}

	outs, err := drv.Outs()
	if err != nil {
		return nil, nil, fmt.Errorf("list outputs: %w", err)
	}
	outPort, err := find(outs, outSpec)
	if err != nil {
		return nil, nil, fmt.Errorf("output: %w", err)
	}

	out, err := NewOutput(outPort)
	if err != nil {
		return nil, nil, err
	}
	return NewInput(in, log), out, nil
}

func openVirtual(drv drivers.Driver, name string, log *zap.Logger) (*Input, *Output, error) {
	v, ok := drv.(VirtualOpener)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoVirtual, drv)
	}

	in, err := v.OpenVirtualIn(name)
	if err != nil {
		return nil, nil, fmt.Errorf("virtual input %q: %w", name, err)
	}
	outPort, err := v.OpenVirtualOut(name)
	if err != nil {
		in.Close()
		return nil, nil, fmt.Errorf("virtual output %q: %w", name, err)
	}

	out, err := NewOutput(outPort)
	if err != nil {
		in.Close()
		return nil, nil, err
	}
	return NewInput(in, log), out, nil
}

// find picks the port matching spec: by exact name, then by number, then by
// case-insensitive substring if exactly one port matches.
func find[P drivers.Port](ports []P, spec string) (P, error) {
	var zero P
	for _, p := range ports {
		if p.String() == spec {
			return p, nil
		}
	}

	if n, err := strconv.Atoi(spec); err == nil {
		for _, p := range ports {
			if p.Number() == n {
				return p, nil
			}
		}
		return zero, fmt.Errorf("no port with number %d", n)
	}

	var matches []P
	for _, p := range ports {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(spec)) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return zero, fmt.Errorf("no port named %q", spec)
	case 1:
		return matches[0], nil
	default:
		return zero, fmt.Errorf("%q matches %d ports", spec, len(matches))
	}
}

// ListPorts returns the driver's input and output ports.
func ListPorts(drv drivers.Driver) (ins, outs []PortInfo, err error) {
	inPorts, err := drv.Ins()
	if err != nil {
		return nil, nil, fmt.Errorf("list inputs: %w", err)
	}
	for _, p := range inPorts {
		ins = append(ins, PortInfo{Number: p.Number(), Name: p.String()})
	}

	outPorts, err := drv.Outs()
	if err != nil {
		return nil, nil, fmt.Errorf("list outputs: %w", err)
	}
	for _, p := range outPorts {
		outs = append(outs, PortInfo{Number: p.Number(), Name: p.String()})
	}
	return ins, outs, nil
}
