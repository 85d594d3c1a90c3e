// Package geo provides a one-shot device position source.
package geo

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Position is a resolved device location.
type Position struct {
	Latitude  float64
	Longitude float64
}

// Failures. The platform does not distinguish denial, timeout and
// position-unavailable; they all surface as ErrUnavailable.
var (
	ErrUnsupported = errors.New("geolocation not supported")
	ErrUnavailable = errors.New("geolocation unavailable")
)

// Source resolves the device position once per call.
type Source interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// CommandSource obtains the position by running a locator command
// (termux-location, CoreLocationCLI and similar) whose stdout contains
// latitude and longitude as two decimal numbers.
type CommandSource struct {
	// Command is the locator invocation, split into argv. Empty means the
	// host has no locator configured.
	Command []string
	// Timeout bounds a single query. Zero means 10 seconds.
	Timeout time.Duration
}

// CurrentPosition runs the locator command and parses its output.
func (s *CommandSource) CurrentPosition(ctx context.Context) (Position, error) {
	if len(s.Command) == 0 {
		return Position{}, ErrUnsupported
	}

	timeout := s.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, s.Command[0], s.Command[1:]...).Output()
	if err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	pos, err := parsePosition(string(out))
	if err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return pos, nil
}

// parsePosition extracts the first two decimal numbers from locator output.
func parsePosition(out string) (Position, error) {
	var nums []float64
	for _, field := range strings.FieldsFunc(out, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n' || r == '\r'
	}) {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			continue
		}
		nums = append(nums, v)
		if len(nums) == 2 {
			return Position{Latitude: nums[0], Longitude: nums[1]}, nil
		}
	}
	return Position{}, fmt.Errorf("no coordinates in output %q", strings.TrimSpace(out))
}
